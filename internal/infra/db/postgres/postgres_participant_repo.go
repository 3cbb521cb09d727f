package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ParticipantRepository = (*participantRepo)(nil)

type participantRepo struct {
	pool *pgxpool.Pool
}

func NewParticipantRepo(pool *pgxpool.Pool) repository.ParticipantRepository {
	return &participantRepo{pool: pool}
}

const participantColumns = `id, telegram_id, email, reward_kind, reward_code, created_at`

func scanParticipant(row pgx.Row) (*model.Participant, error) {
	var p model.Participant
	var kind *string
	err := row.Scan(&p.ID, &p.TelegramID, &p.Email, &kind, &p.RewardCode, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if kind != nil {
		k := model.RewardKind(*kind)
		p.RewardKind = &k
	}
	return &p, nil
}

func (r *participantRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE telegram_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, tgID)
	if err != nil {
		return nil, err
	}
	return scanParticipant(row)
}

func (r *participantRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE email = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	return scanParticipant(row)
}

// CreateIfMissing resolves the participant record for (tgID, email).
// An existing record with the same email is returned as-is, so the first
// submitter of an address keeps the reward. An existing record for the same
// telegram id gets its email updated. Otherwise a fresh record is inserted.
func (r *participantRepo) CreateIfMissing(ctx context.Context, tx repository.Tx, tgID int64, email string) (*model.Participant, error) {
	byEmail, err := r.FindByEmail(ctx, tx, email)
	if err == nil {
		return byEmail, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	byTg, err := r.FindByTelegramID(ctx, tx, tgID)
	if err == nil {
		const upd = `UPDATE participants SET email = $2 WHERE id = $1;`
		if _, err := execSQL(ctx, r.pool, tx, upd, byTg.ID, email); err != nil {
			return nil, err
		}
		byTg.Email = email
		return byTg, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	p := &model.Participant{
		ID:         uuid.NewString(),
		TelegramID: tgID,
		Email:      email,
		CreatedAt:  time.Now(),
	}
	const ins = `
INSERT INTO participants (id, telegram_id, email, created_at)
VALUES ($1, $2, $3, $4);`
	if _, err := execSQL(ctx, r.pool, tx, ins, p.ID, p.TelegramID, p.Email, p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// SetReward attaches the reward once. The reward_kind IS NULL guard keeps a
// concurrent second assignment from overwriting the first.
func (r *participantRepo) SetReward(ctx context.Context, tx repository.Tx, participantID string, kind model.RewardKind, code *string) error {
	const q = `
UPDATE participants SET reward_kind = $2, reward_code = $3
 WHERE id = $1 AND reward_kind IS NULL;`
	tag, err := execSQL(ctx, r.pool, tx, q, participantID, string(kind), code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *participantRepo) CountByRewardKind(ctx context.Context, tx repository.Tx, kind model.RewardKind) (int, error) {
	const q = `SELECT COUNT(*) FROM participants WHERE reward_kind = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, string(kind))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *participantRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants ORDER BY created_at, id;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Participant
	for rows.Next() {
		var p model.Participant
		var kind *string
		if err := rows.Scan(&p.ID, &p.TelegramID, &p.Email, &kind, &p.RewardCode, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if kind != nil {
			k := model.RewardKind(*kind)
			p.RewardKind = &k
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *participantRepo) DeleteAll(ctx context.Context, tx repository.Tx) (int64, error) {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM participants;`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
