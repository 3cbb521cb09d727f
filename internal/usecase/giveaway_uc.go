package usecase

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/domain/ports/repository"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/metrics"
)

// NotConfirmedReason classifies why the verifier said no, so the bot can
// explain what the user should do next.
type NotConfirmedReason string

const (
	ReasonInvited      NotConfirmedReason = "invited"      // confirmation link not clicked yet
	ReasonNew          NotConfirmedReason = "new"          // contact unknown or never subscribed
	ReasonUnsubscribed NotConfirmedReason = "unsubscribed" // opted out, blocked, or inactive
	ReasonOther        NotConfirmedReason = "other"
)

// NotConfirmedError carries the verifier status alongside the classification.
type NotConfirmedError struct {
	Reason NotConfirmedReason
	Status adapter.ContactStatus
}

func (e *NotConfirmedError) Error() string {
	return fmt.Sprintf("subscription not confirmed: %s", e.Reason)
}

// SubmitResult is the successful outcome of an email submission.
type SubmitResult struct {
	Reward  RewardResult
	Already bool // reward existed before this submission
}

// GiveawayUseCase drives one conversation turn: validate the email, verify
// the subscription, then create the participant and assign the reward in a
// single transaction.
type GiveawayUseCase struct {
	participants repository.ParticipantRepository
	rewards      *RewardUseCase
	verifier     adapter.SubscriptionVerifier
	tm           repository.TransactionManager
	log          *zerolog.Logger
	dev          bool
}

func NewGiveawayUseCase(
	participants repository.ParticipantRepository,
	rewards *RewardUseCase,
	verifier adapter.SubscriptionVerifier,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
	dev bool,
) *GiveawayUseCase {
	return &GiveawayUseCase{
		participants: participants,
		rewards:      rewards,
		verifier:     verifier,
		tm:           tm,
		log:          logger,
		dev:          dev,
	}
}

func classify(status adapter.ContactStatus) NotConfirmedReason {
	switch status.EmailStatus {
	case "invited":
		return ReasonInvited
	case "new", "":
		return ReasonNew
	case "unsubscribed", "blocked", "inactive":
		return ReasonUnsubscribed
	default:
		return ReasonOther
	}
}

// SubmitEmail handles one submission for the given telegram user.
//
// The verifier call is slow network I/O, so it happens before the storage
// transaction opens; row locks are never held across it. The transaction
// then covers participant lookup/creation and reward assignment as one
// all-or-nothing unit, which makes retries safe: a second attempt finds the
// existing participant and re-delivers the stored reward.
func (uc *GiveawayUseCase) SubmitEmail(ctx context.Context, tgID int64, raw string) (*SubmitResult, error) {
	log := logging.With(ctx, uc.log)

	email, err := NormalizeEmail(raw)
	if err != nil {
		metrics.ObserveSubmissionRejected("invalid_email")
		return nil, err
	}
	log.Info().Str("email", logging.RedactEmail(email, uc.dev)).Msg("email received")

	status, err := uc.verifier.CheckConfirmed(ctx, email)
	if err != nil {
		metrics.ObserveSubmissionRejected("verifier_unavailable")
		log.Warn().Err(err).Msg("verifier check failed")
		return nil, fmt.Errorf("verify %s: %w", logging.RedactEmail(email, uc.dev), domain.ErrVerifierUnavailable)
	}
	if !status.Confirmed() {
		metrics.ObserveSubmissionRejected("not_confirmed")
		log.Info().
			Str("email_status", status.EmailStatus).
			Bool("in_list", status.InList).
			Str("list_status", status.ListStatus).
			Msg("subscription not confirmed")
		return nil, &NotConfirmedError{Reason: classify(status), Status: status}
	}

	var result SubmitResult
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		participant, err := uc.participants.CreateIfMissing(ctx, tx, tgID, email)
		if err != nil {
			return err
		}

		if participant.Rewarded() {
			result.Already = true
			result.Reward = RewardResult{Kind: *participant.RewardKind, Code: participant.RewardCode}
			return nil
		}

		reward, err := uc.rewards.Assign(ctx, tx, participant.ID)
		if err != nil {
			return err
		}
		if err := uc.participants.SetReward(ctx, tx, participant.ID, reward.Kind, reward.Code); err != nil {
			return err
		}
		result.Reward = *reward
		return nil
	})
	if err != nil {
		metrics.ObserveAllocationFailure()
		log.Error().Err(err).Msg("allocation transaction failed")
		return nil, fmt.Errorf("assign reward: %w", err)
	}

	if result.Already {
		metrics.ObserveRewardRedelivery()
		log.Info().Str("kind", string(result.Reward.Kind)).Msg("reward re-delivered")
	} else {
		metrics.ObserveRewardGranted(string(result.Reward.Kind))
		log.Info().Str("kind", string(result.Reward.Kind)).Msg("reward assigned")
	}
	return &result, nil
}
