package domain

import (
	"testing"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	"github.com/stretchr/testify/assert"
)

func TestViewport_EdgeTriggered(t *testing.T) {
	v := NewViewport(InitialCenter, InitialZoom)
	target := types.Position2D{Latitude: 5.9, Longitude: -55.1}

	assert.False(t, v.Request(InitialCenter, InitialZoom))
	assert.True(t, v.Request(target, SearchZoom))
	assert.False(t, v.Request(target, SearchZoom))

	snap := v.Snapshot()
	assert.Equal(t, uint64(1), snap.Desired.Seq)
	assert.Equal(t, SearchZoom, snap.Desired.Zoom)
}

func TestViewport_UserMoveIsNotReverted(t *testing.T) {
	v := NewViewport(InitialCenter, InitialZoom)
	target := types.Position2D{Latitude: 5.9, Longitude: -55.1}
	panned := types.Position2D{Latitude: 6.1, Longitude: -54.9}

	v.Request(target, SelectionZoom)
	v.UserMoved(panned, 11)
	assert.False(t, v.Request(target, SelectionZoom))

	snap := v.Snapshot()
	assert.Equal(t, panned, snap.Camera)
	assert.Equal(t, 11, snap.Zoom)
	assert.Equal(t, uint64(1), snap.Desired.Seq)
}

func TestViewport_ZeroZoomKeepsCurrent(t *testing.T) {
	v := NewViewport(InitialCenter, InitialZoom)
	target := types.Position2D{Latitude: 5.9, Longitude: -55.1}

	assert.True(t, v.Request(target, 0))
	assert.Equal(t, InitialZoom, v.Snapshot().Desired.Zoom)
}
