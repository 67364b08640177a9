package response

type CreatedPlace struct {
	ID        int32   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CreatePlace struct {
	Message string       `json:"message"`
	Place   CreatedPlace `json:"place"`
}
