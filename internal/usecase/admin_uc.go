package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/repository"
	"telegram-giveaway-bot/internal/infra/metrics"
)

// ParseCodes splits a pasted code list into individual codes: one candidate
// per line, whitespace-separated tokens on a line concatenated into a single
// code, blank lines skipped. "80 12345678" and "8012345678" are the same code.
func ParseCodes(raw string) []string {
	var codes []string
	for _, line := range strings.Split(raw, "\n") {
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		codes = append(codes, strings.Join(parts, ""))
	}
	return codes
}

// AdminUseCase implements the operator surface: quota, code pool loading,
// participant export and purge.
type AdminUseCase struct {
	participants repository.ParticipantRepository
	codes        repository.PromoCodeRepository
	settings     repository.SettingRepository
	rewards      *RewardUseCase
	tm           repository.TransactionManager
	log          *zerolog.Logger
}

func NewAdminUseCase(
	participants repository.ParticipantRepository,
	codes repository.PromoCodeRepository,
	settings repository.SettingRepository,
	rewards *RewardUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *AdminUseCase {
	return &AdminUseCase{
		participants: participants,
		codes:        codes,
		settings:     settings,
		rewards:      rewards,
		tm:           tm,
		log:          logger,
	}
}

// CinemaLimit returns the effective quota (DB override or config default).
func (uc *AdminUseCase) CinemaLimit(ctx context.Context) (int, error) {
	return uc.rewards.CinemaLimit(ctx, nil)
}

// SetCinemaLimit stores a new quota. It takes effect for the next allocation
// decision; in-flight transactions keep the value they already read.
func (uc *AdminUseCase) SetCinemaLimit(ctx context.Context, n int) error {
	if n < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", n)
	}
	if err := uc.settings.Set(ctx, nil, repository.SettingCinemaLimit, strconv.Itoa(n)); err != nil {
		return err
	}
	metrics.ObserveAdminOp("set_limit")
	uc.log.Info().Int("limit", n).Msg("cinema limit updated")
	return nil
}

// LoadCodes parses and stores a pasted code list. Replace mode drops all
// existing cinema codes first; append mode skips duplicates. Returns the
// number of parsed candidates and the number actually inserted.
func (uc *AdminUseCase) LoadCodes(ctx context.Context, raw string, replace bool) (parsed, inserted int, err error) {
	codes := ParseCodes(raw)
	if len(codes) == 0 {
		return 0, 0, nil
	}
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		n, err := uc.codes.BulkInsert(ctx, tx, model.RewardCinema, codes, replace)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	mode := "append"
	if replace {
		mode = "replace"
	}
	metrics.ObserveAdminOp("load_codes_" + mode)
	uc.log.Info().Int("parsed", len(codes)).Int("inserted", inserted).Str("mode", mode).Msg("promo codes loaded")
	return len(codes), inserted, nil
}

// PoolStats reports totals for the cinema pool.
func (uc *AdminUseCase) PoolStats(ctx context.Context) (*model.PoolStats, error) {
	return uc.codes.Stats(ctx, nil, model.RewardCinema)
}

// Summary is the one-call snapshot used by the stats endpoints.
type Summary struct {
	CinemaLimit    int             `json:"cinema_limit"`
	Pool           model.PoolStats `json:"pool"`
	RewardedByKind map[string]int  `json:"rewarded_by_kind"`
}

func (uc *AdminUseCase) GetSummary(ctx context.Context) (*Summary, error) {
	limit, err := uc.rewards.CinemaLimit(ctx, nil)
	if err != nil {
		return nil, err
	}
	pool, err := uc.codes.Stats(ctx, nil, model.RewardCinema)
	if err != nil {
		return nil, err
	}
	byKind := make(map[string]int, 3)
	for _, kind := range []model.RewardKind{model.RewardCinema, model.RewardPromo, model.RewardGuide} {
		n, err := uc.participants.CountByRewardKind(ctx, nil, kind)
		if err != nil {
			return nil, err
		}
		byKind[string(kind)] = n
	}
	return &Summary{CinemaLimit: limit, Pool: *pool, RewardedByKind: byKind}, nil
}

// ExportParticipantsCSV renders all participants as CSV, export order is
// creation time.
func (uc *AdminUseCase) ExportParticipantsCSV(ctx context.Context) ([]byte, int, error) {
	participants, err := uc.participants.ListAll(ctx, nil)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "telegram_id", "email", "reward_kind", "promo_code", "created_at"}); err != nil {
		return nil, 0, err
	}
	for _, p := range participants {
		kind, code := "", ""
		if p.RewardKind != nil {
			kind = string(*p.RewardKind)
		}
		if p.RewardCode != nil {
			code = *p.RewardCode
		}
		rec := []string{
			p.ID,
			strconv.FormatInt(p.TelegramID, 10),
			p.Email,
			kind,
			code,
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	metrics.ObserveAdminOp("export")
	return buf.Bytes(), len(participants), nil
}

// PurgeParticipants deletes every participant. With resetCodes set, it also
// returns every cinema code to the free state in the same transaction, so
// the giveaway can restart cleanly.
func (uc *AdminUseCase) PurgeParticipants(ctx context.Context, resetCodes bool) (removed, reset int64, err error) {
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		n, err := uc.participants.DeleteAll(ctx, tx)
		if err != nil {
			return err
		}
		removed = n
		if resetCodes {
			m, err := uc.codes.ResetAll(ctx, tx, model.RewardCinema)
			if err != nil {
				return err
			}
			reset = m
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	metrics.ObserveAdminOp("purge")
	uc.log.Warn().Int64("removed", removed).Int64("codes_reset", reset).Bool("reset_codes", resetCodes).Msg("participants purged")
	return removed, reset, nil
}
