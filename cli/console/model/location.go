package model

import (
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
)

type LocationSample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Timestamp Timestamp `json:"timestamp"`
}

func (l LocationSample) Position() types.Position2D {
	return types.Position2D{Latitude: l.Latitude, Longitude: l.Longitude}
}

func (l LocationSample) Time() time.Time {
	return l.Timestamp.Time
}
