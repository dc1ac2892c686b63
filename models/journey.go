// api/models/journey.go
package models

import "time"

// RawTouchpointEvent is a single recorded interaction inside a session.
type RawTouchpointEvent struct {
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
}

// RawJourney is one completed user session as delivered by the journey source.
// Touchpoints are in chronological order; that order is the journey's path.
type RawJourney struct {
	SessionID   string               `json:"sessionId"`
	StartTime   time.Time            `json:"startTime"`
	Duration    int64                `json:"duration"`
	Touchpoints []RawTouchpointEvent `json:"touchpoints"`
}

// JourneyAggregate is a journey enriched with derived statistics.
// Path shares the backing array of the raw journey's touchpoints.
type JourneyAggregate struct {
	SessionID       string               `json:"sessionId"`
	CreatedAt       time.Time            `json:"createdAt"`
	Path            []RawTouchpointEvent `json:"-"`
	TotalValue      float64              `json:"totalValue"`
	Sales           int                  `json:"sales"`
	AvgTicket       float64              `json:"avgTicket"`
	TouchpointCount int                  `json:"touchpointCount"`
	AvgDuration     int64                `json:"avgDuration"`
	JourneyCount    int                  `json:"journeyCount"`
	Percentage      float64              `json:"percentage"`
}
