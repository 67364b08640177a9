package types

import (
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

var roleSet = map[Role]struct{}{
	RoleAdmin:    {},
	RoleManager:  {},
	RoleOperator: {},
	RoleViewer:   {},
}

func (r Role) IsValid() bool {
	_, ok := roleSet[r]
	return ok
}

// CanDropPins сообщает, может ли роль создавать места на карте.
// Проверка только подсказка для интерфейса, решение принимает бэкенд.
func (r Role) CanDropPins() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOperator:
		return true
	}
	return false
}

func (r Role) CanAccessAdmin() bool {
	return r == RoleAdmin || r == RoleManager
}

func ParseRole(s string) (Role, error) {
	v := Role(s)
	if !v.IsValid() {
		return "", fmt.Errorf("недопустимая роль: %q", s)
	}
	return v, nil
}

// Неизвестные роли бэкенда не ломают сессию, они просто не дают прав.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = Role(s)
	return nil
}
