package domain

import (
	"context"
	"testing"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/dto/request"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/source"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clickAt = types.Position2D{Latitude: 5.86, Longitude: -55.17}

func named(name string) Prompt {
	return func(types.Position2D) string { return name }
}

func TestGate_PinModeByRole(t *testing.T) {
	tests := []struct {
		role    types.Role
		allowed bool
	}{
		{types.RoleAdmin, true},
		{types.RoleManager, true},
		{types.RoleOperator, true},
		{types.RoleViewer, false},
		{types.Role("guest"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			g := NewGate(newFakeBackend())
			g.SetRole(tt.role)

			on, err := g.TogglePinMode()
			if tt.allowed {
				require.NoError(t, err)
				assert.True(t, on)
			} else {
				assert.ErrorIs(t, err, ErrPinModeNotAllowed)
				assert.False(t, g.PinMode())
			}
		})
	}
}

func TestGate_ViewerClickCreatesNothing(t *testing.T) {
	backend := newFakeBackend()
	g := NewGate(backend)
	g.SetRole(types.RoleViewer)

	_, err := g.TogglePinMode()
	require.ErrorIs(t, err, ErrPinModeNotAllowed)

	created, err := g.MapClick(context.Background(), clickAt, named("Depot"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, backend.createdPlaces())
}

func TestGate_MapClickCreatesPlace(t *testing.T) {
	backend := newFakeBackend()
	g := NewGate(backend)
	g.SetRole(types.RoleOperator)
	g.TogglePinMode()

	var prompted types.Position2D
	created, err := g.MapClick(context.Background(), clickAt, func(at types.Position2D) string {
		prompted = at
		assert.NotNil(t, g.Snapshot().TempPin)
		return "  Depot  "
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, clickAt, prompted)

	assert.Equal(t, []request.CreatePlace{{
		Name:        "Depot",
		Latitude:    clickAt.Latitude,
		Longitude:   clickAt.Longitude,
		Category:    DefaultPlaceCategory,
		Description: MapPlaceDescription,
	}}, backend.createdPlaces())

	snap := g.Snapshot()
	assert.False(t, snap.PinMode)
	assert.Nil(t, snap.TempPin)
	require.Len(t, snap.Places, 1)
	assert.Equal(t, "Depot", snap.Places[0].Name)
}

func TestGate_EmptyNameAbortsSilently(t *testing.T) {
	backend := newFakeBackend()
	g := NewGate(backend)
	g.SetRole(types.RoleManager)
	g.TogglePinMode()

	created, err := g.MapClick(context.Background(), clickAt, named("   "))
	require.NoError(t, err)
	assert.False(t, created)
	assert.False(t, g.PinMode())
	assert.Empty(t, backend.createdPlaces())
}

func TestGate_CreateFailureTurnsPinModeOff(t *testing.T) {
	backend := newFakeBackend()
	backend.createErr = &source.StatusError{Code: 403, Message: "Insufficient permissions"}
	g := NewGate(backend)
	g.SetRole(types.RoleOperator)
	g.TogglePinMode()

	_, err := g.MapClick(context.Background(), clickAt, named("Depot"))
	require.Error(t, err)
	assert.Equal(t, "Insufficient permissions", source.UserMessage(err))
	assert.False(t, g.PinMode())
}

func TestGate_SaveMarkerDefaults(t *testing.T) {
	backend := newFakeBackend()
	g := NewGate(backend)
	g.SetRole(types.RoleAdmin)

	marker := model.SearchMarker{Name: "Paramaribo, Suriname", Latitude: 5.852, Longitude: -55.203}
	_, err := g.SaveMarker(context.Background(), marker, "", "", "")
	assert.ErrorIs(t, err, ErrNameRequired)

	id, err := g.SaveMarker(context.Background(), marker, "Paramaribo", "", "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), id)

	assert.Equal(t, []request.CreatePlace{{
		Name:        "Paramaribo",
		Address:     marker.Name,
		Latitude:    marker.Latitude,
		Longitude:   marker.Longitude,
		Category:    DefaultPlaceCategory,
		Description: "Saved from search: Paramaribo, Suriname",
	}}, backend.createdPlaces())
	assert.Len(t, g.Snapshot().Places, 1)
}

func TestGate_UpdateAndDeletePlace(t *testing.T) {
	backend := newFakeBackend()
	backend.places = []model.PlaceOfInterest{{ID: 4, Name: "Old"}}
	g := NewGate(backend)
	g.SetRole(types.RoleOperator)

	name := "New"
	require.NoError(t, g.UpdatePlace(context.Background(), 4, request.UpdatePlace{Name: &name}))
	assert.Equal(t, "New", g.Snapshot().Places[0].Name)

	require.NoError(t, g.DeletePlace(context.Background(), 4))
	assert.Empty(t, g.Snapshot().Places)

	g.SetRole(types.RoleViewer)
	assert.ErrorIs(t, g.DeletePlace(context.Background(), 4), ErrPinModeNotAllowed)
}
