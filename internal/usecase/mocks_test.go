package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/model"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memTxManager serializes transactions with a mutex, which models the row
// locking the real store gives us: a claim made inside one transaction is
// invisible to others until it commits.
type memTxManager struct {
	mu sync.Mutex
}

func newMemTxManager() *memTxManager { return &memTxManager{} }

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

// memParticipantRepo is a small in-memory implementation used by unit tests.
type memParticipantRepo struct {
	mu    sync.RWMutex
	byID  map[string]*model.Participant
	seq   int
	errOn string // method name to fail, for error-path tests
}

func newMemParticipantRepo() *memParticipantRepo {
	return &memParticipantRepo{byID: make(map[string]*model.Participant)}
}

func (m *memParticipantRepo) fail(method string) error {
	if m.errOn == method {
		return fmt.Errorf("%s: forced failure", method)
	}
	return nil
}

func (m *memParticipantRepo) FindByTelegramID(ctx context.Context, _ repository.Tx, tgID int64) (*model.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.byID {
		if p.TelegramID == tgID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memParticipantRepo) FindByEmail(ctx context.Context, _ repository.Tx, email string) (*model.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memParticipantRepo) CreateIfMissing(ctx context.Context, _ repository.Tx, tgID int64, email string) (*model.Participant, error) {
	if err := m.fail("CreateIfMissing"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	for _, p := range m.byID {
		if p.TelegramID == tgID {
			p.Email = email
			cp := *p
			return &cp, nil
		}
	}
	m.seq++
	p := &model.Participant{
		ID:         fmt.Sprintf("p-%d", m.seq),
		TelegramID: tgID,
		Email:      email,
		CreatedAt:  time.Now(),
	}
	m.byID[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *memParticipantRepo) SetReward(ctx context.Context, _ repository.Tx, id string, kind model.RewardKind, code *string) error {
	if err := m.fail("SetReward"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.RewardKind != nil {
		return domain.ErrAlreadyExists
	}
	k := kind
	p.RewardKind = &k
	if code != nil {
		c := *code
		p.RewardCode = &c
	}
	return nil
}

func (m *memParticipantRepo) CountByRewardKind(ctx context.Context, _ repository.Tx, kind model.RewardKind) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.byID {
		if p.RewardKind != nil && *p.RewardKind == kind {
			n++
		}
	}
	return n, nil
}

func (m *memParticipantRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Participant, 0, len(m.byID))
	for _, p := range m.byID {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memParticipantRepo) DeleteAll(ctx context.Context, _ repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.byID))
	m.byID = make(map[string]*model.Participant)
	return n, nil
}

// memPromoRepo keeps the pool in insertion order so ClaimFree is oldest-first
// like the real store.
type memPromoRepo struct {
	mu    sync.Mutex
	codes []*model.PromoCode
	seq   int64
}

func newMemPromoRepo(codes ...string) *memPromoRepo {
	r := &memPromoRepo{}
	for _, c := range codes {
		r.seq++
		r.codes = append(r.codes, &model.PromoCode{ID: r.seq, Kind: model.RewardCinema, Code: c})
	}
	return r
}

func (m *memPromoRepo) ClaimFree(ctx context.Context, _ repository.Tx, kind model.RewardKind) (*model.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.Kind == kind && !c.IsUsed {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPromoRepo) MarkUsed(ctx context.Context, _ repository.Tx, codeID int64, participantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.ID == codeID {
			if c.IsUsed {
				return domain.ErrCodeAlreadyUsed
			}
			c.IsUsed = true
			pid := participantID
			c.UsedByParticipant = &pid
			now := time.Now()
			c.UsedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memPromoRepo) BulkInsert(ctx context.Context, _ repository.Tx, kind model.RewardKind, codes []string, replace bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if replace {
		kept := m.codes[:0]
		for _, c := range m.codes {
			if c.Kind != kind {
				kept = append(kept, c)
			}
		}
		m.codes = kept
	}
	existing := make(map[string]struct{}, len(m.codes))
	for _, c := range m.codes {
		existing[c.Code] = struct{}{}
	}
	inserted := 0
	for _, code := range codes {
		if _, dup := existing[code]; dup {
			continue
		}
		existing[code] = struct{}{}
		m.seq++
		m.codes = append(m.codes, &model.PromoCode{ID: m.seq, Kind: kind, Code: code})
		inserted++
	}
	return inserted, nil
}

func (m *memPromoRepo) Stats(ctx context.Context, _ repository.Tx, kind model.RewardKind) (*model.PoolStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.PoolStats{}
	for _, c := range m.codes {
		if c.Kind != kind {
			continue
		}
		s.Total++
		if c.IsUsed {
			s.Used++
		}
	}
	s.Free = s.Total - s.Used
	return s, nil
}

func (m *memPromoRepo) ResetAll(ctx context.Context, _ repository.Tx, kind model.RewardKind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.codes {
		if c.Kind == kind && c.IsUsed {
			c.IsUsed = false
			c.UsedByParticipant = nil
			c.UsedAt = nil
			n++
		}
	}
	return n, nil
}

type memSettingRepo struct {
	mu    sync.RWMutex
	store map[string]string
}

func newMemSettingRepo() *memSettingRepo {
	return &memSettingRepo{store: make(map[string]string)}
}

func (m *memSettingRepo) Get(ctx context.Context, _ repository.Tx, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.store[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memSettingRepo) Set(ctx context.Context, _ repository.Tx, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

type memTextRepo struct {
	mu    sync.RWMutex
	store map[string]string
}

func newMemTextRepo() *memTextRepo {
	return &memTextRepo{store: make(map[string]string)}
}

func (m *memTextRepo) Get(ctx context.Context, _ repository.Tx, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.store[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memTextRepo) Set(ctx context.Context, _ repository.Tx, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *memTextRepo) ListKeys(ctx context.Context, _ repository.Tx) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.store))
	for k := range m.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// fakeVerifier returns a canned status or error per email.
type fakeVerifier struct {
	mu       sync.Mutex
	statuses map[string]adapter.ContactStatus
	err      error
	calls    int
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{statuses: make(map[string]adapter.ContactStatus)}
}

func (f *fakeVerifier) confirm(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[email] = adapter.ContactStatus{EmailStatus: "active", InList: true, ListStatus: "active"}
}

func (f *fakeVerifier) CheckConfirmed(ctx context.Context, email string) (adapter.ContactStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return adapter.ContactStatus{}, f.err
	}
	return f.statuses[email], nil
}
