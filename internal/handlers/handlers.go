package handlers

import (
	"context"
	"net/http"
	"time"

	"frameworks/api_bosun/internal/collect"
	"frameworks/api_bosun/internal/threads"
	"frameworks/pkg/logging"

	"github.com/gin-gonic/gin"
)

// Scheduler is the trigger surface exposed over HTTP.
type Scheduler interface {
	TriggerCollection(ctx context.Context)
	TriggerSummaries(ctx context.Context)
	NextCollectionTime() time.Time
	NextSummaryTime() time.Time
}

// ThreadLookup resolves tracked threads for the chat event router.
type ThreadLookup interface {
	Lookup(ctx context.Context, channelID, threadTS string) (threads.TrackedThread, bool, error)
}

// ContextReader answers collection-thread questions for inbound replies.
type ContextReader interface {
	CollectionContext(ctx context.Context, channelID, threadTS string) (collect.ThreadContext, bool, error)
}

type Handler struct {
	Scheduler Scheduler
	Threads   ThreadLookup
	Reader    ContextReader
	Logger    logging.Logger
}

func RegisterRoutes(router gin.IRoutes, handler *Handler) {
	router.POST("/collect", handler.HandleTriggerCollection)
	router.POST("/summaries", handler.HandleTriggerSummaries)
	router.GET("/schedule", handler.HandleSchedule)
	router.GET("/threads/:channel/:ts", handler.HandleGetThread)
	router.GET("/threads/:channel/:ts/context", handler.HandleThreadContext)
}

// HandleTriggerCollection kicks off a collection run in the background.
// The run paces outbound DMs, so the request does not wait for it.
func (h *Handler) HandleTriggerCollection(c *gin.Context) {
	if h == nil || h.Scheduler == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scheduler unavailable"})
		return
	}
	go h.Scheduler.TriggerCollection(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"status": "collection started"})
}

func (h *Handler) HandleTriggerSummaries(c *gin.Context) {
	if h == nil || h.Scheduler == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scheduler unavailable"})
		return
	}
	go h.Scheduler.TriggerSummaries(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"status": "digest run started"})
}

func (h *Handler) HandleSchedule(c *gin.Context) {
	if h == nil || h.Scheduler == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scheduler unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"nextCollection": h.Scheduler.NextCollectionTime(),
		"nextSummaries":  h.Scheduler.NextSummaryTime(),
	})
}

type threadResponse struct {
	ChannelID string `json:"channelId"`
	ThreadTS  string `json:"threadTs"`
	Type      string `json:"type"`
	CycleID   string `json:"cycleId"`
	WeekStart string `json:"weekStart"`
	PersonID  string `json:"personId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

func (h *Handler) HandleGetThread(c *gin.Context) {
	if h == nil || h.Threads == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registry unavailable"})
		return
	}

	thread, found, err := h.Threads.Lookup(c.Request.Context(), c.Param("channel"), c.Param("ts"))
	if err != nil {
		h.Logger.WithError(err).Error("Thread lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "thread lookup failed"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not tracked"})
		return
	}

	c.JSON(http.StatusOK, threadResponse{
		ChannelID: thread.ChannelID,
		ThreadTS:  thread.ThreadTS,
		Type:      string(thread.Type),
		CycleID:   thread.CycleID,
		WeekStart: thread.WeekStart,
		PersonID:  thread.PersonID,
		ProjectID: thread.ProjectID,
	})
}

// HandleThreadContext serves the collection snapshot the chat event router
// needs to answer a check-in reply.
func (h *Handler) HandleThreadContext(c *gin.Context) {
	if h == nil || h.Reader == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reader unavailable"})
		return
	}

	snapshot, found, err := h.Reader.CollectionContext(c.Request.Context(), c.Param("channel"), c.Param("ts"))
	if err != nil {
		h.Logger.WithError(err).Error("Thread context lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "thread context lookup failed"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not a collection thread"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"personName": snapshot.PersonName,
		"projects":   snapshot.Projects,
	})
}
