package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/config"
	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/domain/ports/repository"
	"telegram-giveaway-bot/internal/usecase"
)

// ---- local stubs ----

type stubTxManager struct{ mu sync.Mutex }

func (m *stubTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

type stubParticipantRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Participant
	seq  int
}

func newStubParticipantRepo() *stubParticipantRepo {
	return &stubParticipantRepo{byID: make(map[string]*model.Participant)}
}

func (s *stubParticipantRepo) FindByTelegramID(ctx context.Context, _ repository.Tx, tgID int64) (*model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.TelegramID == tgID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubParticipantRepo) FindByEmail(ctx context.Context, _ repository.Tx, email string) (*model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubParticipantRepo) CreateIfMissing(ctx context.Context, _ repository.Tx, tgID int64, email string) (*model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.Email == email || p.TelegramID == tgID {
			p.Email = email
			cp := *p
			return &cp, nil
		}
	}
	s.seq++
	p := &model.Participant{ID: "p-" + string(rune('0'+s.seq)), TelegramID: tgID, Email: email, CreatedAt: time.Now()}
	s.byID[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *stubParticipantRepo) SetReward(ctx context.Context, _ repository.Tx, id string, kind model.RewardKind, code *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.RewardKind != nil {
		return domain.ErrAlreadyExists
	}
	k := kind
	p.RewardKind = &k
	p.RewardCode = code
	return nil
}

func (s *stubParticipantRepo) CountByRewardKind(ctx context.Context, _ repository.Tx, kind model.RewardKind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.byID {
		if p.RewardKind != nil && *p.RewardKind == kind {
			n++
		}
	}
	return n, nil
}

func (s *stubParticipantRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.Participant, error) {
	return nil, nil
}

func (s *stubParticipantRepo) DeleteAll(ctx context.Context, _ repository.Tx) (int64, error) {
	return 0, nil
}

type stubPromoRepo struct {
	mu    sync.Mutex
	codes []*model.PromoCode
}

func (s *stubPromoRepo) ClaimFree(ctx context.Context, _ repository.Tx, kind model.RewardKind) (*model.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if !c.IsUsed && c.Kind == kind {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubPromoRepo) MarkUsed(ctx context.Context, _ repository.Tx, codeID int64, participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.ID == codeID {
			if c.IsUsed {
				return domain.ErrCodeAlreadyUsed
			}
			c.IsUsed = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubPromoRepo) BulkInsert(ctx context.Context, _ repository.Tx, kind model.RewardKind, codes []string, replace bool) (int, error) {
	return 0, nil
}

func (s *stubPromoRepo) Stats(ctx context.Context, _ repository.Tx, kind model.RewardKind) (*model.PoolStats, error) {
	return &model.PoolStats{}, nil
}

func (s *stubPromoRepo) ResetAll(ctx context.Context, _ repository.Tx, kind model.RewardKind) (int64, error) {
	return 0, nil
}

type stubSettingRepo struct{}

func (stubSettingRepo) Get(ctx context.Context, _ repository.Tx, key string) (string, error) {
	return "", domain.ErrNotFound
}
func (stubSettingRepo) Set(ctx context.Context, _ repository.Tx, key, value string) error {
	return nil
}

type stubTextRepo struct{}

func (stubTextRepo) Get(ctx context.Context, _ repository.Tx, key string) (string, error) {
	return "", domain.ErrNotFound
}
func (stubTextRepo) Set(ctx context.Context, _ repository.Tx, key, value string) error { return nil }
func (stubTextRepo) ListKeys(ctx context.Context, _ repository.Tx) ([]string, error)   { return nil, nil }

type stubVerifier struct {
	status adapter.ContactStatus
	err    error
}

func (s *stubVerifier) CheckConfirmed(ctx context.Context, email string) (adapter.ContactStatus, error) {
	return s.status, s.err
}

// ---- tests ----

func newFacade(t *testing.T, verifier *stubVerifier, poolCodes ...string) *BotFacade {
	t.Helper()
	participants := newStubParticipantRepo()
	promo := &stubPromoRepo{}
	for i, c := range poolCodes {
		promo.codes = append(promo.codes, &model.PromoCode{ID: int64(i + 1), Kind: model.RewardCinema, Code: c})
	}
	cfg := config.GiveawayConfig{CinemaLimit: 10, GuideLink: "https://example.com/guide", FallbackPromo: "SPRING20"}
	logger := zerolog.Nop()

	rewards := usecase.NewRewardUseCase(participants, promo, stubSettingRepo{}, cfg)
	giveawayUC := usecase.NewGiveawayUseCase(participants, rewards, verifier, &stubTxManager{}, &logger, true)
	textsUC, err := usecase.NewTextsUseCase(stubTextRepo{})
	if err != nil {
		t.Fatalf("NewTextsUseCase failed: %v", err)
	}
	adminUC := usecase.NewAdminUseCase(participants, promo, stubSettingRepo{}, rewards, &stubTxManager{}, &logger)
	return NewBotFacade(giveawayUC, textsUC, adminUC, cfg)
}

func confirmed() *stubVerifier {
	return &stubVerifier{status: adapter.ContactStatus{EmailStatus: "active", InList: true, ListStatus: "active"}}
}

func TestBotFacade_HandleEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("winner gets the cinema message with the code", func(t *testing.T) {
		facade := newFacade(t, confirmed(), "CIN-777")
		reply, retry, err := facade.HandleEmail(ctx, 1, "user@example.com")
		if err != nil {
			t.Fatalf("HandleEmail failed: %v", err)
		}
		if retry {
			t.Error("a reward reply must not carry the retry flag")
		}
		if !strings.Contains(reply, "CIN-777") {
			t.Errorf("expected the code in the reply, got %q", reply)
		}
	})

	t.Run("exhausted pool falls back to the promo message", func(t *testing.T) {
		facade := newFacade(t, confirmed()) // no codes
		reply, _, err := facade.HandleEmail(ctx, 1, "user@example.com")
		if err != nil {
			t.Fatalf("HandleEmail failed: %v", err)
		}
		if !strings.Contains(reply, "SPRING20") {
			t.Errorf("expected the fallback promo in the reply, got %q", reply)
		}
	})

	t.Run("repeat submission prefixes the original reward", func(t *testing.T) {
		facade := newFacade(t, confirmed(), "CIN-777")
		if _, _, err := facade.HandleEmail(ctx, 1, "user@example.com"); err != nil {
			t.Fatalf("first HandleEmail failed: %v", err)
		}
		reply, _, err := facade.HandleEmail(ctx, 1, "user@example.com")
		if err != nil {
			t.Fatalf("second HandleEmail failed: %v", err)
		}
		if !strings.Contains(reply, "already took part") || !strings.Contains(reply, "CIN-777") {
			t.Errorf("expected the re-delivery wrapper with the original code, got %q", reply)
		}
	})

	t.Run("invalid email is a terminal reply", func(t *testing.T) {
		facade := newFacade(t, confirmed(), "CIN-777")
		reply, retry, err := facade.HandleEmail(ctx, 1, "nonsense")
		if err != nil {
			t.Fatalf("HandleEmail failed: %v", err)
		}
		if retry {
			t.Error("an invalid email cannot be retried unchanged")
		}
		if !strings.Contains(reply, "valid email") {
			t.Errorf("expected the invalid-email reply, got %q", reply)
		}
	})

	t.Run("unconfirmed subscription invites a re-check", func(t *testing.T) {
		verifier := &stubVerifier{status: adapter.ContactStatus{EmailStatus: "invited"}}
		facade := newFacade(t, verifier, "CIN-777")
		reply, retry, err := facade.HandleEmail(ctx, 1, "user@example.com")
		if err != nil {
			t.Fatalf("HandleEmail failed: %v", err)
		}
		if !retry {
			t.Error("an unconfirmed status should be retryable")
		}
		if !strings.Contains(reply, "not confirmed") {
			t.Errorf("expected the invited reply, got %q", reply)
		}
	})
}

func TestBotFacade_StaticReplies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	facade := newFacade(t, confirmed())

	if msg := facade.HandleStart(ctx); !strings.Contains(msg, "email") {
		t.Errorf("expected the welcome to ask for an email, got %q", msg)
	}
	if msg := facade.HandleCheckAgain(ctx); !strings.Contains(msg, "again") {
		t.Errorf("unexpected check-again prompt: %q", msg)
	}
}
