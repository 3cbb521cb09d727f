package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

var _ repository.PromoCodeRepository = (*promoCodeRepo)(nil)

type promoCodeRepo struct {
	pool *pgxpool.Pool
}

func NewPromoCodeRepo(pool *pgxpool.Pool) repository.PromoCodeRepository {
	return &promoCodeRepo{pool: pool}
}

// ClaimFree selects one free code of the kind, oldest first, and locks the
// row for the rest of the enclosing transaction. SKIP LOCKED makes two
// concurrent claims land on different rows instead of queuing on the same
// one: each claimant either gets its own code immediately or learns the pool
// is empty.
func (r *promoCodeRepo) ClaimFree(ctx context.Context, tx repository.Tx, kind model.RewardKind) (*model.PromoCode, error) {
	const q = `
SELECT id, kind, code, is_used, used_by, used_at
  FROM promo_codes
 WHERE kind = $1 AND is_used = FALSE
 ORDER BY id
 LIMIT 1
FOR UPDATE SKIP LOCKED;`

	row, err := pickRow(ctx, r.pool, tx, q, string(kind))
	if err != nil {
		return nil, err
	}

	var pc model.PromoCode
	var kindStr string
	err = row.Scan(&pc.ID, &kindStr, &pc.Code, &pc.IsUsed, &pc.UsedByParticipant, &pc.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	pc.Kind = model.RewardKind(kindStr)
	return &pc, nil
}

// MarkUsed flips the code to used. The is_used = FALSE condition guards
// against a stale in-memory reference being applied twice.
func (r *promoCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, codeID int64, participantID string) error {
	const q = `
UPDATE promo_codes
   SET is_used = TRUE, used_by = $2, used_at = $3
 WHERE id = $1 AND is_used = FALSE;`
	tag, err := execSQL(ctx, r.pool, tx, q, codeID, participantID, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeAlreadyUsed
	}
	return nil
}

func (r *promoCodeRepo) BulkInsert(ctx context.Context, tx repository.Tx, kind model.RewardKind, codes []string, replace bool) (int, error) {
	if replace {
		if _, err := execSQL(ctx, r.pool, tx, `DELETE FROM promo_codes WHERE kind = $1;`, string(kind)); err != nil {
			return 0, err
		}
	}

	// codes are unique across kinds, so dedupe against the whole table:
	// leaving a cross-kind duplicate to ON CONFLICT would skew the count.
	existing := map[string]struct{}{}
	rows, err := queryRows(ctx, r.pool, tx, `SELECT code FROM promo_codes;`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return 0, domain.ErrReadDatabaseRow
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	inserted := 0
	const ins = `INSERT INTO promo_codes (kind, code) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING;`
	for _, code := range codes {
		if _, ok := existing[code]; ok {
			continue
		}
		tag, err := execSQL(ctx, r.pool, tx, ins, string(kind), code)
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
		existing[code] = struct{}{}
	}
	return inserted, nil
}

func (r *promoCodeRepo) Stats(ctx context.Context, tx repository.Tx, kind model.RewardKind) (*model.PoolStats, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE is_used)
  FROM promo_codes WHERE kind = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, string(kind))
	if err != nil {
		return nil, err
	}
	var s model.PoolStats
	if err := row.Scan(&s.Total, &s.Used); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	s.Free = s.Total - s.Used
	return &s, nil
}

func (r *promoCodeRepo) ResetAll(ctx context.Context, tx repository.Tx, kind model.RewardKind) (int64, error) {
	const q = `
UPDATE promo_codes
   SET is_used = FALSE, used_by = NULL, used_at = NULL
 WHERE kind = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, string(kind))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
