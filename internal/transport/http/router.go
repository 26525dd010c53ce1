// Package http exposes the change pipeline over a gin JSON API.
package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/progress"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/get_cards"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/get_changes"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/get_progress"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/list_events"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/commit_changes"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/discard_changes"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/register_change"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

// Deps are the use cases and queries served by the API. ListEvents may be
// nil when no event store is configured.
type Deps struct {
	RegisterChange *register_change.Interactor
	DiscardChanges *discard_changes.Interactor
	CommitChanges  *commit_changes.Interactor
	GetChanges     *get_changes.Query
	GetProgress    *get_progress.Query
	GetCards       *get_cards.Query
	ListEvents     *list_events.Query
	Store          contracts.CardStore
	Tracker        *progress.Tracker
	Log            *logger.Logger
}

// Handler implements the HTTP endpoints.
type Handler struct {
	registerChange *register_change.Interactor
	discardChanges *discard_changes.Interactor
	commitChanges  *commit_changes.Interactor
	getChanges     *get_changes.Query
	getProgress    *get_progress.Query
	getCards       *get_cards.Query
	listEvents     *list_events.Query
	store          contracts.CardStore
	tracker        *progress.Tracker
	log            *logger.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		registerChange: deps.RegisterChange,
		discardChanges: deps.DiscardChanges,
		commitChanges:  deps.CommitChanges,
		getChanges:     deps.GetChanges,
		getProgress:    deps.GetProgress,
		getCards:       deps.GetCards,
		listEvents:     deps.ListEvents,
		store:          deps.Store,
		tracker:        deps.Tracker,
		log:            log.With("component", "http"),
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.log))

	router.GET("/health", h.healthCheck)

	api := router.Group("/api/v1")
	{
		api.POST("/changes", h.registerChangeHandler)
		api.GET("/changes", h.listChanges)
		api.DELETE("/changes", h.discardAll)
		api.DELETE("/changes/:key", h.discardChange)

		api.POST("/commit", h.startCommit)
		api.DELETE("/commit", h.cancelCommit)
		api.POST("/commit/reset", h.resetProgress)
		api.GET("/commit/progress", h.progress)
		api.GET("/commit/progress/stream", h.progressStream)

		api.GET("/cards", h.cards)

		api.POST("/store/update", h.storeUpdate)
		api.GET("/store/data", h.storeData)

		if h.listEvents != nil {
			api.GET("/events", h.events)
		}
	}

	return router
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "cardsync",
	})
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
