package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"journeylens/api/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var t0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

type stubSource struct {
	journeys []models.RawJourney
	err      error
}

func (s *stubSource) FetchJourneys(context.Context) ([]models.RawJourney, error) {
	return s.journeys, s.err
}

func makeJourneys(n, pathLen int) []models.RawJourney {
	out := make([]models.RawJourney, n)
	for i := range out {
		tps := make([]models.RawTouchpointEvent, pathLen)
		for k := range tps {
			tps[k] = models.RawTouchpointEvent{Channel: "Google Ads", Timestamp: t0.Add(time.Duration(k) * time.Second)}
		}
		out[i] = models.RawJourney{
			SessionID:   fmt.Sprintf("sess-%02d", i),
			StartTime:   t0.Add(time.Duration(i) * time.Hour),
			Duration:    1000,
			Touchpoints: tps,
		}
	}
	return out
}

func doJSON(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
