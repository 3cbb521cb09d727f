package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Migrate applies the idempotent schema. Tables use IF NOT EXISTS so the bot
// can be restarted against an existing database without a migration tool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS participants (
			id          UUID PRIMARY KEY,
			telegram_id BIGINT NOT NULL,
			email       TEXT   NOT NULL,
			reward_kind TEXT,
			reward_code TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT uq_participants_telegram_id UNIQUE (telegram_id),
			CONSTRAINT uq_participants_email UNIQUE (email)
		);`,
		`CREATE TABLE IF NOT EXISTS promo_codes (
			id      BIGSERIAL PRIMARY KEY,
			kind    TEXT NOT NULL DEFAULT 'cinema',
			code    TEXT NOT NULL,
			is_used BOOLEAN NOT NULL DEFAULT FALSE,
			used_by UUID,
			used_at TIMESTAMPTZ,
			CONSTRAINT uq_promo_codes_code UNIQUE (code)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_promo_codes_free
			ON promo_codes (kind, id) WHERE NOT is_used;`,
		`CREATE TABLE IF NOT EXISTS bot_settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bot_texts (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
