package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"journeylens/api/config"
)

type ClickHouseClient struct {
	Conn   clickhouse.Conn
	logger *zap.Logger
}

// touchpointSchema is applied on connect so a fresh database is usable.
const touchpointSchema = `
	CREATE TABLE IF NOT EXISTS touchpoint_events (
		event_id    String,
		event_type  LowCardinality(String),
		session_id  String,
		user_id     String,
		channel     String,
		timestamp   DateTime64(3, 'UTC'),
		duration_ms Int64,
		revenue     Float64,
		event_data  String
	) ENGINE = MergeTree
	ORDER BY (session_id, timestamp)
`

func NewClickHouseDB(cfg config.ClickHouseConfig, logger *zap.Logger) (*ClickHouseClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("CLICKHOUSE_HOST, CLICKHOUSE_NATIVE_PORT, or CLICKHOUSE_DB_NAME environment variables are not set")
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.NativePort)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "journeylens-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: time.Second * 5,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via Native TCP: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := conn.Exec(ctx, touchpointSchema); err != nil {
		return nil, fmt.Errorf("failed to create touchpoint_events table: %w", err)
	}

	logger.Info("connected to ClickHouse", zap.String("addr", options.Addr[0]), zap.String("database", cfg.Database))
	return &ClickHouseClient{Conn: conn, logger: logger}, nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			c.logger.Warn("error closing ClickHouse connection", zap.Error(err))
			return
		}
		c.logger.Info("ClickHouse connection closed")
	}
}
