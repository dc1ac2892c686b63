package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"journeylens/api/config"
)

type DBClient struct {
	DB     *sql.DB
	logger *zap.Logger
}

const analystSchema = `
	CREATE TABLE IF NOT EXISTS analysts (
		id              SERIAL PRIMARY KEY,
		email           TEXT NOT NULL UNIQUE,
		hashed_password BYTEA NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

func NewPostgresDB(cfg config.PostgresConfig, logger *zap.Logger) (*DBClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	if _, err = db.ExecContext(ctx, analystSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating analysts table: %w", err)
	}

	logger.Info("connected to PostgreSQL")
	return &DBClient{DB: db, logger: logger}, nil
}

func (c *DBClient) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.logger.Warn("error closing database connection", zap.Error(err))
		} else {
			c.logger.Info("PostgreSQL database connection closed")
		}
	}
}
