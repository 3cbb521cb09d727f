package application

import (
	"context"
	"errors"
	"fmt"

	"telegram-giveaway-bot/internal/config"
	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/usecase"
)

// BotFacade composes usecases into high-level bot replies.
// Facade methods return ready-to-send strings so the Telegram adapter just
// forwards them to the chat.
type BotFacade struct {
	GiveawayUC *usecase.GiveawayUseCase
	TextsUC    *usecase.TextsUseCase
	AdminUC    *usecase.AdminUseCase

	giveawayCfg config.GiveawayConfig
}

func NewBotFacade(
	giveawayUC *usecase.GiveawayUseCase,
	textsUC *usecase.TextsUseCase,
	adminUC *usecase.AdminUseCase,
	giveawayCfg config.GiveawayConfig,
) *BotFacade {
	return &BotFacade{
		GiveawayUC:  giveawayUC,
		TextsUC:     textsUC,
		AdminUC:     adminUC,
		giveawayCfg: giveawayCfg,
	}
}

// HandleStart returns the greeting for /start.
func (b *BotFacade) HandleStart(ctx context.Context) string {
	return b.TextsUC.T(ctx, "welcome")
}

// HandleCheckAgain returns the prompt shown after the "check again" button.
func (b *BotFacade) HandleCheckAgain(ctx context.Context) string {
	return b.TextsUC.T(ctx, "check_again_prompt")
}

// HandleEmail runs one submission and renders the reply. Expected rejections
// (bad email, unreachable verifier, unconfirmed subscription) come back as a
// user-facing message with a nil error; only storage failures surface as
// errors. retry is set when a later attempt with the same email could succeed,
// so the adapter can offer a "check again" button.
func (b *BotFacade) HandleEmail(ctx context.Context, tgID int64, text string) (reply string, retry bool, err error) {
	result, err := b.GiveawayUC.SubmitEmail(ctx, tgID, text)
	if err != nil {
		var notConfirmed *usecase.NotConfirmedError
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			return b.TextsUC.T(ctx, "invalid_email"), false, nil
		case errors.Is(err, domain.ErrVerifierUnavailable):
			return b.TextsUC.T(ctx, "verifier_unavailable"), true, nil
		case errors.As(err, &notConfirmed):
			return b.renderNotConfirmed(ctx, notConfirmed), true, nil
		default:
			return "", false, fmt.Errorf("submit email: %w", err)
		}
	}

	reward := b.renderReward(ctx, result.Reward)
	if result.Already {
		return b.TextsUC.T(ctx, "already_rewarded", reward), false, nil
	}
	return reward, false, nil
}

func (b *BotFacade) renderNotConfirmed(ctx context.Context, e *usecase.NotConfirmedError) string {
	switch e.Reason {
	case usecase.ReasonInvited:
		return b.TextsUC.T(ctx, "not_confirmed_invited")
	case usecase.ReasonNew:
		return b.TextsUC.T(ctx, "not_confirmed_new")
	case usecase.ReasonUnsubscribed:
		return b.TextsUC.T(ctx, "not_confirmed_unsubscribed", e.Status.EmailStatus)
	default:
		return b.TextsUC.T(ctx, "not_confirmed_other",
			e.Status.EmailStatus, e.Status.InList, e.Status.ListStatus)
	}
}

func (b *BotFacade) renderReward(ctx context.Context, r usecase.RewardResult) string {
	switch r.Kind {
	case model.RewardCinema:
		return b.TextsUC.T(ctx, "reward_cinema", deref(r.Code))
	case model.RewardPromo:
		return b.TextsUC.T(ctx, "reward_promo", deref(r.Code))
	default:
		return b.TextsUC.T(ctx, "reward_guide", b.giveawayCfg.GuideLink)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
