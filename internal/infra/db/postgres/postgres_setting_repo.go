package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

var (
	_ repository.SettingRepository = (*settingRepo)(nil)
	_ repository.BotTextRepository = (*botTextRepo)(nil)
)

type settingRepo struct {
	pool *pgxpool.Pool
}

func NewSettingRepo(pool *pgxpool.Pool) repository.SettingRepository {
	return &settingRepo{pool: pool}
}

func (r *settingRepo) Get(ctx context.Context, tx repository.Tx, key string) (string, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT value FROM bot_settings WHERE key = $1;`, key)
	if err != nil {
		return "", err
	}
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", domain.ErrReadDatabaseRow
	}
	return v, nil
}

func (r *settingRepo) Set(ctx context.Context, tx repository.Tx, key, value string) error {
	const q = `
INSERT INTO bot_settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value;`
	_, err := execSQL(ctx, r.pool, tx, q, key, value)
	return err
}

// botTextRepo stores operator overrides for user-facing texts. Same shape as
// settings but kept in its own table so a full-text listing stays cheap.
type botTextRepo struct {
	pool *pgxpool.Pool
}

func NewBotTextRepo(pool *pgxpool.Pool) repository.BotTextRepository {
	return &botTextRepo{pool: pool}
}

func (r *botTextRepo) Get(ctx context.Context, tx repository.Tx, key string) (string, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT value FROM bot_texts WHERE key = $1;`, key)
	if err != nil {
		return "", err
	}
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", domain.ErrReadDatabaseRow
	}
	return v, nil
}

func (r *botTextRepo) Set(ctx context.Context, tx repository.Tx, key, value string) error {
	const q = `
INSERT INTO bot_texts (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value;`
	_, err := execSQL(ctx, r.pool, tx, q, key, value)
	return err
}

func (r *botTextRepo) ListKeys(ctx context.Context, tx repository.Tx) ([]string, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT key FROM bot_texts ORDER BY key;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
