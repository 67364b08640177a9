package source

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrUnauthenticated = errors.New("сессия недействительна")
var ErrNotFound = errors.New("не найдено")

// StatusError ответ бэкенда с кодом не 2xx.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.Code == http.StatusUnauthorized
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

// UserMessage текст для пользователя: сообщение бэкенда как есть.
func UserMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return err.Error()
}
