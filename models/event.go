// api/models/event.go
package models

import (
	"encoding/json"
	"time"
)

// TouchpointEvent is a single ingested interaction, stored in ClickHouse and
// later grouped by session into RawJourney records.
type TouchpointEvent struct {
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	SessionID  string          `json:"sessionId"`
	UserID     string          `json:"userId"`
	Channel    string          `json:"channel"`
	Timestamp  time.Time       `json:"timestamp"`
	DurationMs int64           `json:"durationMs"`
	Revenue    float64         `json:"revenue,omitempty"`
	EventData  json.RawMessage `json:"eventData,omitempty"`
}

type ChannelCount struct {
	Channel  string `json:"channel"`
	Category string `json:"category"`
	Count    uint64 `json:"count"`
}

// SessionRevenue is the attributed revenue for one session.
type SessionRevenue struct {
	SessionID  string  `json:"sessionId"`
	TotalValue float64 `json:"totalValue"`
	Sales      int     `json:"sales"`
}
