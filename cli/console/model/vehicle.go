package model

type Vehicle struct {
	ID           int32           `json:"id"`
	Name         string          `json:"name"`
	DeviceID     string          `json:"device_id"`
	IsActive     bool            `json:"is_active"`
	LastLocation *LocationSample `json:"lastLocation,omitempty"`
}

// WithLocation возвращает копию транспорта с прикреплённой последней точкой.
func (v Vehicle) WithLocation(sample LocationSample) Vehicle {
	v.LastLocation = &sample
	return v
}
