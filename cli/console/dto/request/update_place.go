package request

type UpdatePlace struct {
	Name        *string  `json:"name,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func (u UpdatePlace) IsEmpty() bool {
	return u.Name == nil && u.Address == nil && u.Latitude == nil && u.Longitude == nil &&
		u.Category == nil && u.Description == nil
}
