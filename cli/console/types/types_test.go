package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Permissions(t *testing.T) {
	tests := []struct {
		role      Role
		dropPins  bool
		adminView bool
	}{
		{RoleAdmin, true, true},
		{RoleManager, true, true},
		{RoleOperator, true, false},
		{RoleViewer, false, false},
		{Role("auditor"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.dropPins, tt.role.CanDropPins())
			assert.Equal(t, tt.adminView, tt.role.CanAccessAdmin())
		})
	}
}

func TestRole_UnknownDoesNotFailDecoding(t *testing.T) {
	var user struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"auditor"}`), &user))
	assert.False(t, user.Role.IsValid())
}

func TestParseHistoryWindow(t *testing.T) {
	for _, hours := range []int{1, 6, 24, 72, 168} {
		w, err := ParseHistoryWindow(hours)
		require.NoError(t, err)
		assert.Equal(t, hours, w.Hours())
	}

	_, err := ParseHistoryWindow(12)
	assert.Error(t, err)
}

func TestView_UnmarshalJSON(t *testing.T) {
	var v View
	require.NoError(t, json.Unmarshal([]byte(`"admin"`), &v))
	assert.Equal(t, ViewAdmin, v)
	assert.Error(t, json.Unmarshal([]byte(`"reports"`), &v))
}

func TestVisitType_UnmarshalJSON(t *testing.T) {
	var vt VisitType
	require.NoError(t, json.Unmarshal([]byte(`null`), &vt))
	assert.Equal(t, VisitType(""), vt)
	require.NoError(t, json.Unmarshal([]byte(`"auto_detected"`), &vt))
	assert.Equal(t, VisitTypeAutoDetected, vt)
	assert.Error(t, json.Unmarshal([]byte(`"teleport"`), &vt))
}

func TestPosition2D_OffsetAndDistance(t *testing.T) {
	start := Position2D{Latitude: 5.852, Longitude: -55.2038}

	moved := start.Offset(1000, 90)
	assert.InDelta(t, 1000, start.DistanceTo(moved), 1)
	assert.InDelta(t, start.Latitude, moved.Latitude, 0.001)
	assert.Greater(t, moved.Longitude, start.Longitude)

	assert.False(t, Position2D{Latitude: 91}.IsValid())
	assert.True(t, start.IsValid())
}
