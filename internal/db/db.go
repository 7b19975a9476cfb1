// Package db provides a pgxpool-based connection pool with schema bootstrap,
// prepared statement registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ftcvanguard/vanguard-alerts/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// schemaDDL creates the dedup ledger table. The UNIQUE constraint on
// (team_id, title, message) is the at-most-once delivery contract;
// everything else in the system leans on it.
const schemaDDL = `
	CREATE TABLE IF NOT EXISTS sent_notifications (
		id      BIGSERIAL PRIMARY KEY,
		team_id INTEGER     NOT NULL,
		title   TEXT        NOT NULL,
		message TEXT        NOT NULL,
		sent_at TIMESTAMPTZ NOT NULL,
		UNIQUE (team_id, title, message)
	)`

// ledgerStatements are prepared on every pool connection. The backend
// validates the referenced relations at Parse time, so every table named
// here must already exist when the pool opens its first connection.
var ledgerStatements = map[string]string{
	// Health
	"health_check": "SELECT 1",

	// Ledger
	"ledger_seen": `
		SELECT 1 FROM sent_notifications
		WHERE team_id = $1 AND title = $2 AND message = $3
		LIMIT 1`,
	"ledger_record": `
		INSERT INTO sent_notifications (team_id, title, message, sent_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (team_id, title, message) DO NOTHING`,
	"ledger_recent": `
		SELECT team_id, title, message, sent_at
		FROM sent_notifications
		ORDER BY sent_at DESC
		LIMIT $1`,
}

// New bootstraps the schema and creates a validated connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// On a fresh database the prepared statements below would fail with
	// undefined_table, so the DDL runs over a plain connection before the
	// pool creates its first one.
	if err := ensureSchema(ctx, poolCfg.ConnConfig); err != nil {
		return nil, err
	}

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// ensureSchema applies schemaDDL over a single throwaway connection. The
// connection deliberately bypasses the pool so no prepared statements are
// registered against tables that do not exist yet.
func ensureSchema(ctx context.Context, connCfg *pgx.ConnConfig) error {
	conn, err := pgx.ConnectConfig(ctx, connCfg.Copy())
	if err != nil {
		return fmt.Errorf("connect for schema bootstrap: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure sent_notifications: %w", err)
	}
	return nil
}

// registerPreparedStatements registers all statements the ledger and API
// layers use. Prepared statements eliminate parse overhead on every query.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range ledgerStatements {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
