package repository

import (
	"context"

	"telegram-giveaway-bot/internal/domain/model"
)

// ParticipantRepository is the port for the durable participant store.
// Uniqueness of both telegram_id and email is enforced by the store.
type ParticipantRepository interface {
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.Participant, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.Participant, error)
	// CreateIfMissing resolves the participant for (tgID, email): an existing
	// record with the same email wins; an existing record for the same
	// telegram id gets its email updated; otherwise a new record is created.
	CreateIfMissing(ctx context.Context, tx Tx, tgID int64, email string) (*model.Participant, error)
	// SetReward attaches the reward exactly once. It must not overwrite an
	// existing assignment.
	SetReward(ctx context.Context, tx Tx, participantID string, kind model.RewardKind, code *string) error
	CountByRewardKind(ctx context.Context, tx Tx, kind model.RewardKind) (int, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Participant, error)
	DeleteAll(ctx context.Context, tx Tx) (int64, error)
}
