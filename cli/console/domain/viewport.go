package domain

import (
	"sync"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
)

const (
	InitialZoom   = 13
	SelectionZoom = 15
	SearchZoom    = 16
)

var InitialCenter = types.Position2D{Latitude: 5.8520, Longitude: -55.2038}

// CameraIntent желаемое положение карты. Seq растёт с каждым программным
// перемещением, интерфейс двигает карту только при смене Seq.
type CameraIntent struct {
	Center types.Position2D `json:"center"`
	Zoom   int              `json:"zoom"`
	Seq    uint64           `json:"seq"`
}

type ViewportSnapshot struct {
	Desired CameraIntent     `json:"desired"`
	Camera  types.Position2D `json:"camera"`
	Zoom    int              `json:"zoom"`
}

type Viewport struct {
	mu      sync.Mutex
	desired CameraIntent
	camera  types.Position2D
	zoom    int
}

func NewViewport(center types.Position2D, zoom int) *Viewport {
	return &Viewport{
		desired: CameraIntent{Center: center, Zoom: zoom},
		camera:  center,
		zoom:    zoom,
	}
}

// Request задаёт программное перемещение. Совпадающее с текущим желаемым
// значение перемещения не вызывает. zoom <= 0 сохраняет текущий масштаб.
func (v *Viewport) Request(center types.Position2D, zoom int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if zoom <= 0 {
		zoom = v.zoom
	}
	if v.desired.Center == center && v.desired.Zoom == zoom {
		return false
	}
	v.desired = CameraIntent{Center: center, Zoom: zoom, Seq: v.desired.Seq + 1}
	v.camera = center
	v.zoom = zoom
	return true
}

// UserMoved запоминает положение, выставленное пользователем.
func (v *Viewport) UserMoved(center types.Position2D, zoom int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.camera = center
	if zoom > 0 {
		v.zoom = zoom
	}
}

func (v *Viewport) Snapshot() ViewportSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	return ViewportSnapshot{Desired: v.desired, Camera: v.camera, Zoom: v.zoom}
}
