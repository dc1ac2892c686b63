package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"journeylens/api/dashboard"
	"journeylens/api/journey"
	"journeylens/api/utils"
)

type DashboardHandlers struct {
	Controller *dashboard.Controller
	logger     *zap.Logger
}

func NewDashboardHandlers(c *dashboard.Controller, logger *zap.Logger) *DashboardHandlers {
	return &DashboardHandlers{Controller: c, logger: logger}
}

// writeDashboardError maps controller errors to responses. A failed load is
// reported with its message unchanged.
func (h *DashboardHandlers) writeDashboardError(c *gin.Context, err error) {
	var nre *dashboard.NotReadyError
	switch {
	case errors.As(err, &nre):
		status := http.StatusServiceUnavailable
		if nre.Status == dashboard.StatusFailed {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"state": h.Controller.Snapshot()})
	case errors.Is(err, dashboard.ErrJourneyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// GetDashboard returns the load state and the window for ?page, ?sort, ?q.
func (h *DashboardHandlers) GetDashboard(c *gin.Context) {
	page, err := utils.ParsePositiveInt(c.Query("page"), 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'page' parameter: " + err.Error()})
		return
	}

	window, err := h.Controller.Window(journey.Query{
		SearchTerm: c.Query("q"),
		Sort:       journey.ParseSortOrder(c.Query("sort")),
		Page:       page,
		PageSize:   journey.DefaultPageSize,
	})
	if err != nil {
		h.writeDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": h.Controller.Snapshot(), "window": window})
}

// Reload replays the full fetch and aggregation.
func (h *DashboardHandlers) Reload(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := h.Controller.Load(ctx); err != nil {
		h.writeDashboardError(c, &dashboard.NotReadyError{Status: dashboard.StatusFailed, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.Controller.Snapshot()})
}

type actionRequest struct {
	State  *journey.ViewState `json:"state"`
	Action journey.Action     `json:"action"`
}

// ApplyAction reduces a client-held view state by one action.
func (h *DashboardHandlers) ApplyAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Action.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action.type is required"})
		return
	}

	state := journey.InitialViewState()
	if req.State != nil {
		state = *req.State
		if state.Columns == nil {
			state.Columns = journey.InitialViewState().Columns
		}
	}

	next, window, err := h.Controller.Apply(state, req.Action)
	if err != nil {
		h.writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": next, "window": window})
}

func (h *DashboardHandlers) GetStats(c *gin.Context) {
	summary, err := h.Controller.Summary()
	if err != nil {
		h.writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetDisclosure returns the revealed prefix of one journey's path.
func (h *DashboardHandlers) GetDisclosure(c *gin.Context) {
	visible := 0
	if v := c.Query("visible"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'visible' parameter. Must be a non-negative integer."})
			return
		}
		visible = n
	}
	reveal := c.Query("reveal") == "true" || c.Query("reveal") == "1"

	view, err := h.Controller.Disclose(c.Param("sessionId"), visible, reveal)
	if err != nil {
		h.writeDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DashboardHandlers) Classify(c *gin.Context) {
	channel := c.Query("channel")
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel query parameter is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": channel, "category": journey.Classify(channel)})
}
