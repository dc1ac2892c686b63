package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"journeylens/api/database"
	"journeylens/api/journey"
	"journeylens/api/models"
	"journeylens/api/utils"
)

// TouchpointStore keeps ingested touchpoints in ClickHouse and reads them
// back as journeys.
type TouchpointStore struct {
	DB     *database.ClickHouseClient
	logger *zap.Logger
	limit  int
}

type TouchpointCountByTime struct {
	Time    time.Time `json:"time"`
	Channel *string   `json:"channel,omitempty"`
	Count   uint64    `json:"count"`
}

// NewTouchpointStore returns a store that reads at most limit sessions per
// journey fetch.
func NewTouchpointStore(chClient *database.ClickHouseClient, limit int, logger *zap.Logger) *TouchpointStore {
	if limit <= 0 {
		limit = 10000
	}
	return &TouchpointStore{DB: chClient, logger: logger, limit: limit}
}

func (s *TouchpointStore) InsertTouchpoints(ctx context.Context, events []models.TouchpointEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO touchpoint_events (
			event_id, event_type, session_id, user_id, channel, timestamp,
			duration_ms, revenue, event_data
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.EventType,
			event.SessionID,
			event.UserID,
			event.Channel,
			event.Timestamp,
			event.DurationMs,
			event.Revenue,
			string(event.EventData),
		)
		if err != nil {
			s.logger.Warn("error appending touchpoint to batch", zap.String("event_id", event.EventID), zap.Error(err))
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	s.logger.Info("inserted touchpoints", zap.Int("count", len(events)))
	return nil
}

// FetchJourneys groups stored touchpoints by session, newest sessions first.
// It satisfies source.Source.
func (s *TouchpointStore) FetchJourneys(ctx context.Context) ([]models.RawJourney, error) {
	query := `
		SELECT session_id,
		       groupArray(channel) AS channels,
		       groupArray(timestamp) AS timestamps,
		       sum(duration_ms) AS duration_ms
		FROM (
			SELECT session_id, channel, timestamp, duration_ms
			FROM touchpoint_events
			ORDER BY session_id, timestamp
		)
		GROUP BY session_id
		ORDER BY min(timestamp) DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journeys: %w", err)
	}
	defer rows.Close()

	var journeys []models.RawJourney
	for rows.Next() {
		var (
			sessionID  string
			channels   []string
			timestamps []time.Time
			durationMs int64
		)
		if err := rows.Scan(&sessionID, &channels, &timestamps, &durationMs); err != nil {
			s.logger.Warn("error scanning journey row", zap.Error(err))
			continue
		}
		j, ok := buildJourney(sessionID, channels, timestamps, durationMs)
		if !ok {
			s.logger.Warn("skipping malformed journey", zap.String("session_id", sessionID))
			continue
		}
		journeys = append(journeys, j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during journey query: %w", err)
	}
	return journeys, nil
}

// buildJourney assembles a session's touchpoints in time order. The duration
// is the summed event durations, or the first-to-last span when none were
// recorded.
func buildJourney(sessionID string, channels []string, timestamps []time.Time, durationMs int64) (models.RawJourney, bool) {
	if sessionID == "" || len(channels) == 0 || len(channels) != len(timestamps) {
		return models.RawJourney{}, false
	}

	tps := make([]models.RawTouchpointEvent, len(channels))
	for i := range channels {
		tps[i] = models.RawTouchpointEvent{Channel: channels[i], Timestamp: timestamps[i]}
	}
	sort.SliceStable(tps, func(i, k int) bool { return tps[i].Timestamp.Before(tps[k].Timestamp) })

	if durationMs <= 0 {
		durationMs = tps[len(tps)-1].Timestamp.Sub(tps[0].Timestamp).Milliseconds()
	}
	return models.RawJourney{
		SessionID:   sessionID,
		StartTime:   tps[0].Timestamp,
		Duration:    durationMs,
		Touchpoints: tps,
	}, true
}

// SessionRevenue sums revenue and counts purchase events for the given
// sessions. Sessions with no rows are absent from the result.
func (s *TouchpointStore) SessionRevenue(ctx context.Context, sessionIDs []string) ([]models.SessionRevenue, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT session_id, sum(revenue) AS total_value, toInt64(countIf(event_type = 'purchase')) AS sales
		FROM touchpoint_events
		WHERE has(?, session_id)
		GROUP BY session_id
	`
	rows, err := s.DB.Conn.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query session revenue: %w", err)
	}
	defer rows.Close()

	var results []models.SessionRevenue
	for rows.Next() {
		var (
			sessionID string
			total     float64
			sales     int64
		)
		if err := rows.Scan(&sessionID, &total, &sales); err != nil {
			s.logger.Warn("error scanning revenue row", zap.Error(err))
			continue
		}
		if math.IsNaN(total) {
			total = 0
		}
		results = append(results, models.SessionRevenue{SessionID: sessionID, TotalValue: total, Sales: int(sales)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenue rows: %w", err)
	}
	return results, nil
}

// LoadAttributor builds a revenue table for the given journeys.
func (s *TouchpointStore) LoadAttributor(ctx context.Context, raw []models.RawJourney) (journey.Attributor, error) {
	ids := make([]string, len(raw))
	for i, j := range raw {
		ids[i] = j.SessionID
	}
	rows, err := s.SessionRevenue(ctx, ids)
	if err != nil {
		return nil, err
	}
	return journey.NewTableAttributor(rows), nil
}

func (s *TouchpointStore) GetTouchpointCountsOverTime(ctx context.Context, interval string, start, end time.Time, channelFilter string) ([]TouchpointCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	args := []interface{}{start, end}
	selectCols := fmt.Sprintf("toStartOf%s(timestamp) AS time_bucket, count() AS total", interval)
	groupByCols := "time_bucket"
	whereClause := "WHERE timestamp >= ? AND timestamp <= ?"
	orderByCols := "time_bucket ASC"
	isFilteringByChannel := channelFilter != ""

	if isFilteringByChannel {
		selectCols += ", channel"
		groupByCols += ", channel"
		whereClause += " AND channel = ?"
		args = append(args, channelFilter)
		orderByCols += ", channel ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM touchpoint_events
		%s
		GROUP BY %s
		ORDER BY %s
	`, selectCols, whereClause, groupByCols, orderByCols)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query touchpoint counts over time: %w", err)
	}
	defer rows.Close()

	var results []TouchpointCountByTime
	for rows.Next() {
		var (
			bucket  time.Time
			count   uint64
			channel string
			result  TouchpointCountByTime
		)
		if isFilteringByChannel {
			if err := rows.Scan(&bucket, &count, &channel); err != nil {
				s.logger.Warn("error scanning touchpoint count row", zap.Error(err))
				continue
			}
			result.Channel = &channel
		} else if err := rows.Scan(&bucket, &count); err != nil {
			s.logger.Warn("error scanning touchpoint count row", zap.Error(err))
			continue
		}
		result.Time = bucket
		result.Count = count
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during touchpoint counts query: %w", err)
	}
	return results, nil
}

func (s *TouchpointStore) GetTopChannels(ctx context.Context, start, end time.Time, limit uint64) ([]models.ChannelCount, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT channel, count() AS touchpoints
		FROM touchpoint_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY channel
		ORDER BY touchpoints DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top channels: %w", err)
	}
	defer rows.Close()

	var results []models.ChannelCount
	for rows.Next() {
		var channel string
		var count uint64
		if err := rows.Scan(&channel, &count); err != nil {
			s.logger.Warn("error scanning top channel row", zap.Error(err))
			continue
		}
		results = append(results, models.ChannelCount{
			Channel:  channel,
			Category: string(journey.Classify(channel)),
			Count:    count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top channel rows: %w", err)
	}
	return results, nil
}
