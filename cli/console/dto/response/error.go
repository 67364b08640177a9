package response

type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Text текст ошибки бэкенда для показа пользователю как есть.
func (e Error) Text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
