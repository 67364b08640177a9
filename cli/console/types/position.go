package types

import "math"

type Position2D struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p Position2D) IsValid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// DistanceTo расстояние по дуге большого круга в метрах.
func (p Position2D) DistanceTo(position Position2D) float64 {
	const R = 6371000.0
	lat1 := p.Latitude * math.Pi / 180
	lat2 := position.Latitude * math.Pi / 180
	dLat := (position.Latitude - p.Latitude) * math.Pi / 180
	dLon := (position.Longitude - p.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// Offset сдвигает точку на заданное расстояние по курсу (градусы от севера).
func (p Position2D) Offset(meters, bearing float64) Position2D {
	const R = 6371000.0
	lat1 := p.Latitude * math.Pi / 180
	lon1 := p.Longitude * math.Pi / 180
	brg := bearing * math.Pi / 180
	d := meters / R

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(math.Sin(brg)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	return Position2D{Latitude: lat2 * 180 / math.Pi, Longitude: lon2 * 180 / math.Pi}
}
