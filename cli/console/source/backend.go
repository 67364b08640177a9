package source

import (
	"context"
	"io"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/dto/request"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
)

// Backend REST-контракт трекера, которым пользуется консоль.
type Backend interface {
	GetVehicles(ctx context.Context) ([]model.Vehicle, error)
	GetLastLocation(ctx context.Context, vehicleID int32) (model.LocationSample, error)
	GetHistory(ctx context.Context, vehicleID int32, window types.HistoryWindow) ([]model.LocationSample, error)

	GetSavedLocations(ctx context.Context, vehicleID int32) ([]model.SavedLocation, error)
	UpdateSavedLocation(ctx context.Context, vehicleID, locationID int32, update request.UpdateSavedLocation) error
	DeleteSavedLocation(ctx context.Context, vehicleID, locationID int32) error

	GetPlaces(ctx context.Context) ([]model.PlaceOfInterest, error)
	CreatePlace(ctx context.Context, place request.CreatePlace) (int32, error)
	UpdatePlace(ctx context.Context, placeID int32, update request.UpdatePlace) error
	DeletePlace(ctx context.Context, placeID int32) error

	Geocode(ctx context.Context, address string) ([]model.SearchResult, error)

	GetStats(ctx context.Context, vehicleID int32, window types.HistoryWindow) (model.VehicleStats, error)
	Export(ctx context.Context, vehicleID int32, window types.HistoryWindow, format types.ExportFormat, w io.Writer) error
}

// Session эндпоинты авторизации, внешний коллаборатор консоли.
type Session interface {
	Login(ctx context.Context, credentials request.Login) (model.User, error)
	Check(ctx context.Context) (*model.User, error)
	Logout(ctx context.Context) error
}
