package repository

import (
	"context"

	"telegram-giveaway-bot/internal/domain/model"
)

// PromoCodeRepository is the port for the shared single-use code pool.
type PromoCodeRepository interface {
	// ClaimFree selects one unconsumed code of the kind, oldest first, and
	// locks it for the remainder of the enclosing transaction. Rows locked by
	// concurrent claims are skipped rather than waited on. Returns
	// domain.ErrNotFound when the pool is empty.
	ClaimFree(ctx context.Context, tx Tx, kind model.RewardKind) (*model.PromoCode, error)
	// MarkUsed flips used=false -> used=true, recording the consumer and
	// timestamp. Returns domain.ErrCodeAlreadyUsed if the code was consumed
	// in the meantime.
	MarkUsed(ctx context.Context, tx Tx, codeID int64, participantID string) error
	// BulkInsert loads codes of one kind. In replace mode all existing codes
	// of the kind are deleted first; in append mode codes already present are
	// skipped. Returns the number of rows inserted.
	BulkInsert(ctx context.Context, tx Tx, kind model.RewardKind, codes []string, replace bool) (int, error)
	Stats(ctx context.Context, tx Tx, kind model.RewardKind) (*model.PoolStats, error)
	// ResetAll returns every code of the kind to the free state.
	ResetAll(ctx context.Context, tx Tx, kind model.RewardKind) (int64, error)
}
