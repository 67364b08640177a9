package types

import (
	"encoding/json"
	"fmt"
)

type View string

const (
	ViewTracking View = "tracking"
	ViewAdmin    View = "admin"
)

func (v View) IsValid() bool {
	return v == ViewTracking || v == ViewAdmin
}

func ParseView(s string) (View, error) {
	v := View(s)
	if !v.IsValid() {
		return "", fmt.Errorf("недопустимый режим просмотра: %q", s)
	}
	return v, nil
}

func (v *View) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseView(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
