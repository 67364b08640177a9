package domain

import "errors"

var (
	ErrNotAuthenticated  = errors.New("пользователь не авторизован")
	ErrAdminNotAllowed   = errors.New("роль не даёт доступа к администрированию")
	ErrPinModeNotAllowed = errors.New("роль не позволяет добавлять места на карту")
	ErrNoSearchMarker    = errors.New("нет выбранного результата поиска")
	ErrNameRequired      = errors.New("не указано название места")
	ErrNoSelection       = errors.New("транспорт не выбран")
	ErrInvalidPosition   = errors.New("некорректные координаты")
)
