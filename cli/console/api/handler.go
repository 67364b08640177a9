package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/domain"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/dto/request"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/source"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Console interface {
	Start(user model.User)
	Logout(ctx context.Context) error
	Snapshot() domain.Snapshot

	SelectVehicle(vehicleID int32) error
	ClearSelection()
	SetHistoryWindow(window types.HistoryWindow) error
	SetActiveView(view types.View) error

	TogglePinMode() (bool, error)
	MapClick(ctx context.Context, at types.Position2D, prompt domain.Prompt) (bool, error)
	UserMovedMap(center types.Position2D, zoom int) error

	SubmitSearch(text string) error
	SelectSearchResult(result model.SearchResult) error
	ClearSearch()
	SaveSearchMarkerAsPOI(ctx context.Context, name, category, description string) (int32, error)

	UpdatePlace(ctx context.Context, placeID int32, update request.UpdatePlace) error
	DeletePlace(ctx context.Context, placeID int32) error
	UpdateSavedLocation(ctx context.Context, locationID int32, update request.UpdateSavedLocation) error
	DeleteSavedLocation(ctx context.Context, locationID int32) error
	RefreshSavedLocations(ctx context.Context) error

	Stats(ctx context.Context) (model.VehicleStats, error)
	Export(ctx context.Context, format types.ExportFormat, w io.Writer) error
}

type Handler struct {
	Console Console
	Auth    source.Session
}

func NewHandler(console Console, auth source.Session) *Handler {
	return &Handler{Console: console, Auth: auth}
}

func statusOf(err error) int {
	var statusErr *source.StatusError
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, source.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAdminNotAllowed), errors.Is(err, domain.ErrPinModeNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoSearchMarker), errors.Is(err, domain.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNameRequired), errors.Is(err, domain.ErrInvalidPosition):
		return http.StatusBadRequest
	case errors.As(err, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500:
		return statusErr.Code
	}
	return http.StatusBadGateway
}

func fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{"err": err, "path": c.FullPath()}).Error("Ошибка обработки запроса")
	}
	c.JSON(status, gin.H{"error": source.UserMessage(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return 0, false
	}
	return int32(id), true
}

func (h *Handler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.Console.Snapshot())
}

func (h *Handler) Login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Auth.Login(c.Request.Context(), request.Login{Username: body.Username, Password: body.Password})
	if err != nil {
		fail(c, err)
		return
	}
	h.Console.Start(user)
	c.JSON(http.StatusOK, user)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Console.Logout(c.Request.Context()); err != nil {
		log.WithField("err", err).Warn("Ошибка выхода на бэкенде")
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SelectVehicle(c *gin.Context) {
	var body selectVehicleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.VehicleID == nil {
		h.Console.ClearSelection()
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.Console.SelectVehicle(*body.VehicleID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetHistoryWindow(c *gin.Context) {
	var body historyWindowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	window, err := types.ParseHistoryWindow(body.Hours)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Console.SetHistoryWindow(window); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetActiveView(c *gin.Context) {
	var body viewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	view, err := types.ParseView(body.View)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Console.SetActiveView(view); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) TogglePinMode(c *gin.Context) {
	on, err := h.Console.TogglePinMode()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pinMode": on})
}

// MapClick название места приходит вместе с кликом, пустое означает отказ.
func (h *Handler) MapClick(c *gin.Context) {
	var body mapClickRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	at := types.Position2D{Latitude: *body.Latitude, Longitude: *body.Longitude}
	created, err := h.Console.MapClick(c.Request.Context(), at, func(types.Position2D) string {
		return body.Name
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

func (h *Handler) MapMoved(c *gin.Context) {
	var body mapMovedRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	center := types.Position2D{Latitude: *body.Latitude, Longitude: *body.Longitude}
	if err := h.Console.UserMovedMap(center, body.Zoom); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Search(c *gin.Context) {
	var body searchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Console.SubmitSearch(body.Query); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *Handler) SelectSearchResult(c *gin.Context) {
	var body searchResultRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Console.SelectSearchResult(body); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearSearch(c *gin.Context) {
	h.Console.ClearSearch()
	c.Status(http.StatusNoContent)
}

func (h *Handler) SaveSearchMarker(c *gin.Context) {
	var body saveMarkerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	id, err := h.Console.SaveSearchMarkerAsPOI(c.Request.Context(), body.Name, body.Category, body.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) UpdatePlace(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body request.UpdatePlace
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Console.UpdatePlace(c.Request.Context(), id, body); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeletePlace(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Console.DeletePlace(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateSavedLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body request.UpdateSavedLocation
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Console.UpdateSavedLocation(c.Request.Context(), id, body); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteSavedLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Console.DeleteSavedLocation(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RefreshSavedLocations(c *gin.Context) {
	if err := h.Console.RefreshSavedLocations(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Console.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Export(c *gin.Context) {
	format, err := types.ParseExportFormat(c.DefaultQuery("format", string(types.ExportFormatJSON)))
	if err != nil {
		badRequest(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.Console.Export(c.Request.Context(), format, &buf); err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
