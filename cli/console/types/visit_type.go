package types

import (
	"encoding/json"
	"fmt"
)

type VisitType string

const (
	VisitTypeManual       VisitType = "manual"
	VisitTypeAutoDetected VisitType = "auto_detected"
)

func (vt VisitType) IsValid() bool {
	return vt == VisitTypeManual || vt == VisitTypeAutoDetected
}

func (vt *VisitType) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*vt = ""
		return nil
	}
	v := VisitType(*s)
	if !v.IsValid() {
		return fmt.Errorf("недопустимый visit_type: %q", *s)
	}
	*vt = v
	return nil
}
