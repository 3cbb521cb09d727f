package web

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

// Minimal in-memory fixtures for the handler tests.

type stubTxManager struct{ mu sync.Mutex }

func (m *stubTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

type stubParticipantRepo struct {
	participants []*model.Participant
}

func (s *stubParticipantRepo) FindByTelegramID(ctx context.Context, _ repository.Tx, tgID int64) (*model.Participant, error) {
	for _, p := range s.participants {
		if p.TelegramID == tgID {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubParticipantRepo) FindByEmail(ctx context.Context, _ repository.Tx, email string) (*model.Participant, error) {
	for _, p := range s.participants {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubParticipantRepo) CreateIfMissing(ctx context.Context, _ repository.Tx, tgID int64, email string) (*model.Participant, error) {
	p := &model.Participant{ID: "p-new", TelegramID: tgID, Email: email, CreatedAt: time.Now()}
	s.participants = append(s.participants, p)
	return p, nil
}

func (s *stubParticipantRepo) SetReward(ctx context.Context, _ repository.Tx, id string, kind model.RewardKind, code *string) error {
	return nil
}

func (s *stubParticipantRepo) CountByRewardKind(ctx context.Context, _ repository.Tx, kind model.RewardKind) (int, error) {
	n := 0
	for _, p := range s.participants {
		if p.RewardKind != nil && *p.RewardKind == kind {
			n++
		}
	}
	return n, nil
}

func (s *stubParticipantRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.Participant, error) {
	return s.participants, nil
}

func (s *stubParticipantRepo) DeleteAll(ctx context.Context, _ repository.Tx) (int64, error) {
	n := int64(len(s.participants))
	s.participants = nil
	return n, nil
}

type stubPromoRepo struct {
	stats model.PoolStats
}

func (s *stubPromoRepo) ClaimFree(ctx context.Context, _ repository.Tx, kind model.RewardKind) (*model.PromoCode, error) {
	return nil, domain.ErrNotFound
}

func (s *stubPromoRepo) MarkUsed(ctx context.Context, _ repository.Tx, codeID int64, participantID string) error {
	return nil
}

func (s *stubPromoRepo) BulkInsert(ctx context.Context, _ repository.Tx, kind model.RewardKind, codes []string, replace bool) (int, error) {
	return len(codes), nil
}

func (s *stubPromoRepo) Stats(ctx context.Context, _ repository.Tx, kind model.RewardKind) (*model.PoolStats, error) {
	cp := s.stats
	return &cp, nil
}

func (s *stubPromoRepo) ResetAll(ctx context.Context, _ repository.Tx, kind model.RewardKind) (int64, error) {
	return 0, nil
}

type stubSettingRepo struct {
	values map[string]string
}

func (s *stubSettingRepo) Get(ctx context.Context, _ repository.Tx, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", domain.ErrNotFound
}

func (s *stubSettingRepo) Set(ctx context.Context, _ repository.Tx, key, value string) error {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	return nil
}
