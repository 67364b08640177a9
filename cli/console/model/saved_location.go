package model

import "github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"

type SavedLocation struct {
	ID                  int32           `json:"id"`
	Name                string          `json:"name"`
	Latitude            float64         `json:"latitude"`
	Longitude           float64         `json:"longitude"`
	Timestamp           Timestamp       `json:"timestamp"`
	VisitType           types.VisitType `json:"visit_type"`
	StopDurationMinutes *int            `json:"stop_duration_minutes,omitempty"`
	Notes               *string         `json:"notes,omitempty"`
}
