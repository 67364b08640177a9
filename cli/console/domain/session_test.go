package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StateTransitions(t *testing.T) {
	s := NewSession(types.DefaultHistoryWindow)
	assert.Equal(t, StateIdle, s.Snapshot().State)

	require.True(t, s.Select(7))
	assert.Equal(t, StateSelecting, s.Snapshot().State)
	assert.False(t, s.Select(7), "повторный выбор того же транспорта")

	tag, ok := s.Issue()
	require.True(t, ok)
	applied, _ := s.ApplyHistory(tag.History, nil, nil)
	require.True(t, applied)
	assert.Equal(t, StateFocused, s.Snapshot().State)

	require.True(t, s.SetWindow(types.HistoryWindow6h))
	assert.Equal(t, StateSelecting, s.Snapshot().State)

	require.True(t, s.Deselect())
	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.VehicleID)
	assert.Equal(t, types.HistoryWindow6h, snap.HistoryHours)
}

func TestSession_VehicleSwitchDiscardsOldResponse(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession(types.DefaultHistoryWindow)

	s.Select(1)
	tagA, _ := s.Issue()

	s.Select(2)
	tagB, _ := s.Issue()

	historyB := []model.LocationSample{sample(2, 2, base)}
	applied, _ := s.ApplyHistory(tagB.History, historyB, nil)
	require.True(t, applied)

	applied, _ = s.ApplyHistory(tagA.History, []model.LocationSample{sample(1, 1, base)}, nil)
	assert.False(t, applied)
	assert.False(t, s.ApplySaved(tagA.Saved, []model.SavedLocation{{ID: 1}}, nil))

	snap := s.Snapshot()
	assert.Equal(t, historyB, snap.History)
	assert.Empty(t, snap.SavedLocations)
	require.NotNil(t, snap.VehicleID)
	assert.Equal(t, int32(2), *snap.VehicleID)
}

func TestSession_WindowChangeKeepsTrail(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession(types.DefaultHistoryWindow)
	s.Select(1)

	tag, _ := s.Issue()
	trail := []model.LocationSample{sample(1, 1, base)}
	s.ApplyHistory(tag.History, trail, nil)

	s.SetWindow(types.HistoryWindow72h)
	assert.Equal(t, trail, s.Snapshot().History)

	// ответ на запрос со старой глубиной
	applied, _ := s.ApplyHistory(tag.History, []model.LocationSample{}, nil)
	assert.False(t, applied)
}

func TestSession_FailureClearsOnlyOwnCollection(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession(types.DefaultHistoryWindow)
	s.Select(1)

	tag, _ := s.Issue()
	s.ApplyHistory(tag.History, []model.LocationSample{sample(1, 1, base)}, nil)
	s.ApplySaved(tag.Saved, []model.SavedLocation{{ID: 3, Name: "Depot"}}, nil)

	tag, _ = s.Issue()
	s.ApplyHistory(tag.History, nil, errors.New("timeout"))
	s.ApplySaved(tag.Saved, []model.SavedLocation{{ID: 3, Name: "Depot"}}, nil)

	snap := s.Snapshot()
	assert.Empty(t, snap.History)
	assert.Len(t, snap.SavedLocations, 1)
}

func TestSession_RecenterOnFirstNonEmptyHistory(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession(types.DefaultHistoryWindow)
	s.Select(1)

	tag, _ := s.Issue()
	_, recenter := s.ApplyHistory(tag.History, []model.LocationSample{}, nil)
	assert.Nil(t, recenter)

	// неупорядоченный ответ сортируется по времени
	tag, _ = s.Issue()
	_, recenter = s.ApplyHistory(tag.History, []model.LocationSample{
		sample(3, 3, base.Add(2*time.Minute)),
		sample(1, 1, base),
	}, nil)
	require.NotNil(t, recenter)
	assert.Equal(t, 3.0, recenter.Latitude)
	assert.Equal(t, 1.0, s.Snapshot().History[0].Latitude)

	tag, _ = s.Issue()
	_, recenter = s.ApplyHistory(tag.History, []model.LocationSample{sample(4, 4, base)}, nil)
	assert.Nil(t, recenter, "повторные опросы не центрируют карту")
}

func TestSession_IssueWithoutSelection(t *testing.T) {
	s := NewSession(types.DefaultHistoryWindow)

	_, ok := s.Issue()
	assert.False(t, ok)
	_, _, ok = s.IssueSaved()
	assert.False(t, ok)
}
