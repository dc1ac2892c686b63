package journey

import (
	"fmt"
	"time"

	"journeylens/api/models"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func rawJourney(id string, offset time.Duration, channels ...string) models.RawJourney {
	start := baseTime.Add(offset)
	tps := make([]models.RawTouchpointEvent, len(channels))
	for i, c := range channels {
		tps[i] = models.RawTouchpointEvent{Channel: c, Timestamp: start.Add(time.Duration(i) * time.Minute)}
	}
	return models.RawJourney{
		SessionID:   id,
		StartTime:   start,
		Duration:    int64(len(channels)) * 60_000,
		Touchpoints: tps,
	}
}

func rawJourneys(n int) []models.RawJourney {
	out := make([]models.RawJourney, n)
	for i := range out {
		out[i] = rawJourney(fmt.Sprintf("sess-%03d", i), time.Duration(i)*time.Hour, "google", "email")
	}
	return out
}

func longPath(n int) []models.RawTouchpointEvent {
	out := make([]models.RawTouchpointEvent, n)
	for i := range out {
		out[i] = models.RawTouchpointEvent{Channel: fmt.Sprintf("ch-%d", i), Timestamp: baseTime.Add(time.Duration(i) * time.Second)}
	}
	return out
}

// fixedAttributor returns values keyed by session ID.
type fixedAttributor map[string]Attribution

func (f fixedAttributor) Attribute(j models.RawJourney) Attribution { return f[j.SessionID] }
