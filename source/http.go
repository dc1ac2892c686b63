// Package source fetches raw journeys from wherever they live.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"journeylens/api/models"
)

// Source supplies the raw journeys to aggregate.
type Source interface {
	FetchJourneys(ctx context.Context) ([]models.RawJourney, error)
}

const journeysPath = "/api/journeys"

// HTTPSource reads GET {baseURL}/api/journeys.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPSource(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *HTTPSource) FetchJourneys(ctx context.Context) ([]models.RawJourney, error) {
	url := s.baseURL + journeysPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: "error reading response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: msg}
	}

	journeys, err := decodeJourneys(body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched journeys", zap.String("url", url), zap.Int("count", len(journeys)))
	return journeys, nil
}

func decodeJourneys(body []byte) ([]models.RawJourney, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ShapeError{Reason: fmt.Sprintf("response is not a JSON object: %v", err)}
	}
	if env.Success == nil {
		return nil, &ShapeError{Reason: "missing success flag"}
	}
	if !*env.Success {
		return nil, &ShapeError{Reason: "success is false"}
	}
	trimmed := strings.TrimSpace(string(env.Data))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, &ShapeError{Reason: "data is not a list"}
	}

	var journeys []models.RawJourney
	if err := json.Unmarshal(env.Data, &journeys); err != nil {
		return nil, &ShapeError{Reason: fmt.Sprintf("malformed journey: %v", err)}
	}
	for i, j := range journeys {
		if j.SessionID == "" {
			return nil, &ShapeError{Reason: fmt.Sprintf("journey %d has no sessionId", i)}
		}
		if len(j.Touchpoints) == 0 {
			return nil, &ShapeError{Reason: fmt.Sprintf("journey %s has no touchpoints", j.SessionID)}
		}
	}
	return journeys, nil
}
