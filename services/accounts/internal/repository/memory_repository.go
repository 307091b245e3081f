package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/domain"
	"github.com/google/uuid"
)

// memoryRepository keeps accounts in process memory. It mirrors the Postgres
// constraints (one verified account per email and per phone) so the service
// behaves the same without a database.
type memoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*memoryRecord
	seq      int64
	now      func() time.Time
}

type memoryRecord struct {
	acc domain.Account
	seq int64
}

func NewMemoryRepository() AccountRepository {
	return newMemoryRepository(time.Now)
}

func newMemoryRepository(now func() time.Time) *memoryRepository {
	return &memoryRepository{accounts: make(map[string]*memoryRecord), now: now}
}

func matches(a *domain.Account, email, phone string) bool {
	return strings.EqualFold(a.Email, email) || a.Phone == phone
}

func clone(a domain.Account) *domain.Account {
	if a.OTPCode != nil {
		c := *a.OTPCode
		a.OTPCode = &c
	}
	if a.OTPExpiresAt != nil {
		t := *a.OTPExpiresAt
		a.OTPExpiresAt = &t
	}
	return &a
}

func (r *memoryRepository) FindVerified(_ context.Context, email, phone string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.accounts {
		if rec.acc.Verified && matches(&rec.acc, email, phone) {
			return clone(rec.acc), nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) CountPending(_ context.Context, email, phone string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, rec := range r.accounts {
		if !rec.acc.Verified && matches(&rec.acc, email, phone) {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) CreatePending(_ context.Context, acc domain.NewAccount) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	code := acc.OTPCode
	expiresAt := acc.OTPExpiresAt
	r.seq++
	rec := &memoryRecord{
		seq: r.seq,
		acc: domain.Account{
			ID:           uuid.NewString(),
			Name:         acc.Name,
			Email:        acc.Email,
			Phone:        acc.Phone,
			PasswordHash: acc.PasswordHash,
			OTPCode:      &code,
			OTPExpiresAt: &expiresAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	r.accounts[rec.acc.ID] = rec
	return clone(rec.acc), nil
}

func (r *memoryRepository) ReconcilePending(_ context.Context, email, phone string) (*domain.Account, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*memoryRecord
	for _, rec := range r.accounts {
		if !rec.acc.Verified && matches(&rec.acc, email, phone) {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		return nil, 0, nil
	}

	sort.Slice(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if !a.acc.CreatedAt.Equal(b.acc.CreatedAt) {
			return a.acc.CreatedAt.After(b.acc.CreatedAt)
		}
		return a.seq > b.seq
	})

	for _, rec := range pending[1:] {
		delete(r.accounts, rec.acc.ID)
	}
	return clone(pending[0].acc), len(pending) - 1, nil
}

func (r *memoryRepository) MarkVerified(_ context.Context, id, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.accounts[id]
	if !ok || rec.acc.Verified || !rec.acc.CodeMatches(code) {
		return domain.NewError(domain.ErrNotFound, domain.MsgUserNotFound)
	}
	for otherID, other := range r.accounts {
		if otherID == id || !other.acc.Verified {
			continue
		}
		if strings.EqualFold(other.acc.Email, rec.acc.Email) || other.acc.Phone == rec.acc.Phone {
			return domain.NewError(domain.ErrAlreadyRegistered, domain.MsgAlreadyRegistered)
		}
	}

	rec.acc.Verified = true
	rec.acc.OTPCode = nil
	rec.acc.OTPExpiresAt = nil
	rec.acc.UpdatedAt = r.now()
	return nil
}

func (r *memoryRepository) DeleteStalePending(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rec := range r.accounts {
		if rec.acc.Verified || rec.acc.OTPExpiresAt == nil {
			continue
		}
		if rec.acc.OTPExpiresAt.Before(olderThan) {
			delete(r.accounts, id)
			n++
		}
	}
	return n, nil
}
