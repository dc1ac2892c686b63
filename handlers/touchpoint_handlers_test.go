package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"journeylens/api/models"
	"journeylens/api/store"
)

type fakeTouchpoints struct {
	inserted  []models.TouchpointEvent
	insertErr error
	interval  string
	channel   string
	start     time.Time
	end       time.Time
	limit     uint64
}

func (f *fakeTouchpoints) InsertTouchpoints(_ context.Context, events []models.TouchpointEvent) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, events...)
	return nil
}

func (f *fakeTouchpoints) GetTouchpointCountsOverTime(_ context.Context, interval string, start, end time.Time, channel string) ([]store.TouchpointCountByTime, error) {
	f.interval, f.start, f.end, f.channel = interval, start, end, channel
	return []store.TouchpointCountByTime{{Time: start, Count: 4}}, nil
}

func (f *fakeTouchpoints) GetTopChannels(_ context.Context, start, end time.Time, limit uint64) ([]models.ChannelCount, error) {
	f.start, f.end, f.limit = start, end, limit
	return []models.ChannelCount{{Channel: "Google Ads", Category: "google", Count: 9}}, nil
}

func touchpointRouter(repo *fakeTouchpoints) *gin.Engine {
	h := NewTouchpointHandlers(repo, zap.NewNop())
	h.now = func() time.Time { return t0 }

	r := gin.New()
	r.POST("/api/touchpoints", h.TrackTouchpoints)
	r.GET("/api/touchpoints/counts", h.GetTouchpointCountsOverTime)
	r.GET("/api/channels/top", h.GetTopChannels)
	return r
}

func TestTrackTouchpoints(t *testing.T) {
	repo := &fakeTouchpoints{}
	r := touchpointRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/api/touchpoints", []gin.H{
		{"sessionId": "s1", "channel": "instagram"},
		{"sessionId": "s1", "channel": "purchase", "eventType": "purchase", "revenue": 120.5, "timestamp": t0.Add(time.Hour)},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, repo.inserted, 2)

	first, second := repo.inserted[0], repo.inserted[1]
	assert.NotEmpty(t, first.EventID)
	assert.NotEqual(t, first.EventID, second.EventID)
	assert.Equal(t, "touchpoint", first.EventType)
	assert.Equal(t, t0, first.Timestamp)
	assert.Equal(t, "purchase", second.EventType)
	assert.Equal(t, t0.Add(time.Hour), second.Timestamp)
}

func TestTrackTouchpoints_Rejects(t *testing.T) {
	repo := &fakeTouchpoints{}
	r := touchpointRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/api/touchpoints", []gin.H{{"channel": "google"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.inserted)

	w = doJSON(t, r, http.MethodPost, "/api/touchpoints", gin.H{"not": "a list"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	repo.insertErr = errors.New("clickhouse down")
	w = doJSON(t, r, http.MethodPost, "/api/touchpoints", []gin.H{{"sessionId": "s", "channel": "google"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetTouchpointCountsOverTime(t *testing.T) {
	repo := &fakeTouchpoints{}
	r := touchpointRouter(repo)

	w := doJSON(t, r, http.MethodGet, "/api/touchpoints/counts", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/touchpoints/counts?interval=Fortnight", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/touchpoints/counts?interval=Day&channel=google", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Day", repo.interval)
	assert.Equal(t, "google", repo.channel)
	assert.Equal(t, t0, repo.end)
	assert.Equal(t, t0.Add(-7*24*time.Hour), repo.start)
}

func TestGetTopChannels(t *testing.T) {
	repo := &fakeTouchpoints{}
	r := touchpointRouter(repo)

	w := doJSON(t, r, http.MethodGet, "/api/channels/top?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/channels/top?limit=3&start=2025-02-01T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, repo.limit)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), repo.start)

	resp := decode[struct {
		Channels []models.ChannelCount `json:"channels"`
	}](t, w)
	require.Len(t, resp.Channels, 1)
	assert.Equal(t, "google", resp.Channels[0].Category)
}
