package usecase

import (
	"context"
	"errors"
	"strconv"

	"telegram-giveaway-bot/internal/config"
	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

// RewardResult is the outcome of one allocation decision.
type RewardResult struct {
	Kind model.RewardKind
	Code *string // nil for the guide reward
}

// RewardUseCase decides and commits which reward a participant receives.
//
// The quota check is optimistic: two concurrent allocations may both observe
// count < limit, so a burst right at the boundary can grant slightly more
// cinema rewards than the configured ceiling while free codes remain. The
// load-bearing guarantee is the pool's exclusive claim: a specific code can
// never go to two participants. Operators stock the pool to the quota, which
// also bounds the total.
type RewardUseCase struct {
	participants repository.ParticipantRepository
	codes        repository.PromoCodeRepository
	settings     repository.SettingRepository
	cfg          config.GiveawayConfig
}

func NewRewardUseCase(
	participants repository.ParticipantRepository,
	codes repository.PromoCodeRepository,
	settings repository.SettingRepository,
	cfg config.GiveawayConfig,
) *RewardUseCase {
	return &RewardUseCase{participants: participants, codes: codes, settings: settings, cfg: cfg}
}

// CinemaLimit returns the current scarce quota: the DB setting if present,
// else the configured default. Read fresh on every decision; never cached.
func (uc *RewardUseCase) CinemaLimit(ctx context.Context, tx repository.Tx) (int, error) {
	raw, err := uc.settings.Get(ctx, tx, repository.SettingCinemaLimit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uc.cfg.CinemaLimit, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return uc.cfg.CinemaLimit, nil
	}
	return n, nil
}

// Assign picks the reward for participantID. It must run inside the same
// transaction as the participant lookup that precedes it, so "already
// rewarded" and "newly rewarded" stay mutually exclusive under concurrency.
//
// Priority:
//  1. cinema, while winners < limit and a free code can be claimed
//  2. the configured reusable fallback promo, if any
//  3. the guide link
func (uc *RewardUseCase) Assign(ctx context.Context, tx repository.Tx, participantID string) (*RewardResult, error) {
	winners, err := uc.participants.CountByRewardKind(ctx, tx, model.RewardCinema)
	if err != nil {
		return nil, err
	}
	limit, err := uc.CinemaLimit(ctx, tx)
	if err != nil {
		return nil, err
	}

	if winners < limit {
		code, err := uc.codes.ClaimFree(ctx, tx, model.RewardCinema)
		switch {
		case err == nil:
			if err := uc.codes.MarkUsed(ctx, tx, code.ID, participantID); err != nil {
				return nil, err
			}
			return &RewardResult{Kind: model.RewardCinema, Code: &code.Code}, nil
		case errors.Is(err, domain.ErrNotFound):
			// pool exhausted ahead of the quota; fall through
		default:
			return nil, err
		}
	}

	if uc.cfg.FallbackPromo != "" {
		promo := uc.cfg.FallbackPromo
		return &RewardResult{Kind: model.RewardPromo, Code: &promo}, nil
	}

	return &RewardResult{Kind: model.RewardGuide}, nil
}
