package model

type VehicleStats struct {
	TotalPoints     int     `json:"total_points"`
	AvgSpeed        float64 `json:"avg_speed"`
	MaxSpeed        float64 `json:"max_speed"`
	DistanceKM      float64 `json:"distance_km"`
	TimePeriodHours int     `json:"time_period_hours,omitempty"`
}
