package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJourney(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	j, ok := buildJourney("s1",
		[]string{"organic", "google", "email"},
		[]time.Time{t0.Add(2 * time.Minute), t0, t0.Add(5 * time.Minute)},
		0,
	)
	require.True(t, ok)
	assert.Equal(t, "s1", j.SessionID)
	assert.Equal(t, t0, j.StartTime)
	assert.Equal(t, int64(5*60*1000), j.Duration)
	require.Len(t, j.Touchpoints, 3)
	assert.Equal(t, "google", j.Touchpoints[0].Channel)
	assert.Equal(t, "organic", j.Touchpoints[1].Channel)
	assert.Equal(t, "email", j.Touchpoints[2].Channel)
}

func TestBuildJourney_RecordedDurationWins(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	j, ok := buildJourney("s1", []string{"google"}, []time.Time{t0}, 42_000)
	require.True(t, ok)
	assert.Equal(t, int64(42_000), j.Duration)
}

func TestBuildJourney_Rejects(t *testing.T) {
	t0 := time.Now()
	_, ok := buildJourney("", []string{"a"}, []time.Time{t0}, 0)
	assert.False(t, ok)
	_, ok = buildJourney("s", nil, nil, 0)
	assert.False(t, ok)
	_, ok = buildJourney("s", []string{"a", "b"}, []time.Time{t0}, 0)
	assert.False(t, ok)
}
