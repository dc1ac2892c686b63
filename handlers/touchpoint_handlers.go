package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"journeylens/api/models"
	"journeylens/api/store"
	"journeylens/api/utils"
)

type TouchpointRepository interface {
	InsertTouchpoints(ctx context.Context, events []models.TouchpointEvent) error
	GetTouchpointCountsOverTime(ctx context.Context, interval string, start, end time.Time, channelFilter string) ([]store.TouchpointCountByTime, error)
	GetTopChannels(ctx context.Context, start, end time.Time, limit uint64) ([]models.ChannelCount, error)
}

type TouchpointHandlers struct {
	Touchpoints TouchpointRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewTouchpointHandlers(repo TouchpointRepository, logger *zap.Logger) *TouchpointHandlers {
	return &TouchpointHandlers{Touchpoints: repo, logger: logger, now: time.Now}
}

// TrackTouchpoints ingests a batch of touchpoints. Each stored record gets a
// fresh event id.
func (h *TouchpointHandlers) TrackTouchpoints(c *gin.Context) {
	var incoming []models.TouchpointEvent
	if err := c.ShouldBindJSON(&incoming); err != nil {
		h.logger.Debug("error binding touchpoint batch", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(incoming) == 0 {
		c.Status(http.StatusOK)
		return
	}

	events := make([]models.TouchpointEvent, 0, len(incoming))
	for i, event := range incoming {
		if event.SessionID == "" || event.Channel == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and channel are required", "index": i})
			return
		}
		event.EventID = uuid.New().String()
		if event.EventType == "" {
			event.EventType = "touchpoint"
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = h.now().UTC()
		}
		events = append(events, event)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Touchpoints.InsertTouchpoints(ctx, events); err != nil {
		h.logger.Error("error inserting touchpoints into ClickHouse", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record touchpoints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accepted": len(events)})
}

func (h *TouchpointHandlers) GetTouchpointCountsOverTime(c *gin.Context) {
	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}
	if !utils.IsValidInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval: " + interval})
		return
	}

	start, end, err := utils.ParseTimeRange(c.Query("start"), c.Query("end"), h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Touchpoints.GetTouchpointCountsOverTime(ctx, interval, start, end, c.Query("channel"))
	if err != nil {
		h.logger.Error("error getting touchpoint counts over time", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve touchpoint statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *TouchpointHandlers) GetTopChannels(c *gin.Context) {
	start, end, err := utils.ParseTimeRange(c.Query("start"), c.Query("end"), h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var limit uint64 = 10
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err = strconv.ParseUint(limitStr, 10, 64)
		if err != nil || limit == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Touchpoints.GetTopChannels(ctx, start, end, limit)
	if err != nil {
		h.logger.Error("error getting top channels", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top channels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate": start.Format(time.RFC3339),
		"endDate":   end.Format(time.RFC3339),
		"channels":  results,
	})
}
