package model

import "github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"

type SearchResult struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Type       string  `json:"type,omitempty"`
	Importance float64 `json:"importance,omitempty"`
}

func (r SearchResult) Position() types.Position2D {
	return types.Position2D{Latitude: r.Latitude, Longitude: r.Longitude}
}

// SearchMarker временная метка выбранного результата поиска.
type SearchMarker struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (m SearchMarker) Position() types.Position2D {
	return types.Position2D{Latitude: m.Latitude, Longitude: m.Longitude}
}
