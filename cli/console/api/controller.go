package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const apiKeyHeader = "X-API-Key"

type Controller struct {
	Handler *Handler
	Hub     *Hub

	router *gin.Engine
	server *http.Server
}

// NewController apiKey пустой отключает проверку ключа.
func NewController(handler *Handler, hub *Hub, addr, apiKey string) *Controller {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	if apiKey != "" {
		router.Use(requireAPIKey(apiKey))
	}

	router.GET("/ws", gin.WrapH(hub))

	api := router.Group("/api")
	{
		api.GET("/snapshot", handler.GetSnapshot)

		auth := api.Group("/auth")
		auth.POST("/login", handler.Login)
		auth.POST("/logout", handler.Logout)

		api.PUT("/selection", handler.SelectVehicle)
		api.PUT("/history-window", handler.SetHistoryWindow)
		api.PUT("/view", handler.SetActiveView)

		mapGroup := api.Group("/map")
		mapGroup.POST("/pin-mode", handler.TogglePinMode)
		mapGroup.POST("/click", handler.MapClick)
		mapGroup.POST("/moved", handler.MapMoved)

		search := api.Group("/search")
		search.POST("", handler.Search)
		search.DELETE("", handler.ClearSearch)
		search.POST("/select", handler.SelectSearchResult)
		search.POST("/marker/save", handler.SaveSearchMarker)

		places := api.Group("/places")
		places.PUT("/:id", handler.UpdatePlace)
		places.DELETE("/:id", handler.DeletePlace)

		saved := api.Group("/saved-locations")
		saved.POST("/refresh", handler.RefreshSavedLocations)
		saved.PUT("/:id", handler.UpdateSavedLocation)
		saved.DELETE("/:id", handler.DeleteSavedLocation)

		api.GET("/stats", handler.GetStats)
		api.GET("/export", handler.Export)
	}

	return &Controller{
		Handler: handler,
		Hub:     hub,
		router:  router,
		server:  &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second},
	}
}

func requireAPIKey(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			key = c.Query("api_key")
		}
		if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "неверный API-ключ"})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("Запрос к API консоли")
	}
}

func (c *Controller) Router() http.Handler {
	return c.router
}

// Run блокируется до остановки сервера.
func (c *Controller) Run() error {
	log.Infof("Запуск API консоли на %s", c.server.Addr)
	if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (c *Controller) Shutdown(ctx context.Context) error {
	c.Hub.Close()
	return c.server.Shutdown(ctx)
}
