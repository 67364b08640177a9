package model

import "github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"

type PlaceOfInterest struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"created_at"`
	CreatedBy   *string   `json:"created_by,omitempty"`
}

func (p PlaceOfInterest) Position() types.Position2D {
	return types.Position2D{Latitude: p.Latitude, Longitude: p.Longitude}
}
