package repository

import (
	"context"
	"testing"
	"time"

	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func pending(email, phone, code string, expiresAt time.Time) domain.NewAccount {
	return domain.NewAccount{
		Name:         "Test User",
		Email:        email,
		Phone:        phone,
		PasswordHash: "hash",
		OTPCode:      code,
		OTPExpiresAt: expiresAt,
	}
}

func TestMemoryRepository_CreateAndCount(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMemoryRepository(clock.Now)

	acc, err := repo.CreatePending(ctx, pending("a@x.com", "+911234567890", "111111", clock.t.Add(5*time.Minute)))
	require.NoError(t, err)
	assert.NotEmpty(t, acc.ID)
	assert.False(t, acc.Verified)
	require.NotNil(t, acc.OTPCode)
	assert.Equal(t, "111111", *acc.OTPCode)

	_, err = repo.CreatePending(ctx, pending("b@x.com", "+911234567890", "222222", clock.t.Add(5*time.Minute)))
	require.NoError(t, err)

	// matched by email only
	n, err := repo.CountPending(ctx, "A@x.com", "+910000000000")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// matched by phone covers both
	n, err = repo.CountPending(ctx, "c@x.com", "+911234567890")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, err := repo.FindVerified(ctx, "a@x.com", "+911234567890")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryRepository_ReconcileKeepsNewest(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMemoryRepository(clock.Now)

	_, err := repo.CreatePending(ctx, pending("a@x.com", "+911234567890", "111111", clock.t.Add(5*time.Minute)))
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = repo.CreatePending(ctx, pending("a@x.com", "+911234567890", "222222", clock.t.Add(5*time.Minute)))
	require.NoError(t, err)
	// same timestamp, later insert wins
	newest, err := repo.CreatePending(ctx, pending("a@x.com", "+911234567890", "333333", clock.t.Add(5*time.Minute)))
	require.NoError(t, err)

	canonical, removed, err := repo.ReconcilePending(ctx, "a@x.com", "+911234567890")
	require.NoError(t, err)
	require.NotNil(t, canonical)
	assert.Equal(t, newest.ID, canonical.ID)
	assert.Equal(t, 2, removed)

	n, err := repo.CountPending(ctx, "a@x.com", "+911234567890")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	again, removed, err := repo.ReconcilePending(ctx, "a@x.com", "+911234567890")
	require.NoError(t, err)
	assert.Equal(t, newest.ID, again.ID)
	assert.Zero(t, removed)
}

func TestMemoryRepository_ReconcileNone(t *testing.T) {
	repo := NewMemoryRepository()
	canonical, removed, err := repo.ReconcilePending(context.Background(), "a@x.com", "+911234567890")
	require.NoError(t, err)
	assert.Nil(t, canonical)
	assert.Zero(t, removed)
}

func TestMemoryRepository_MarkVerified(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMemoryRepository(clock.Now)

	acc, err := repo.CreatePending(ctx, pending("a@x.com", "+911234567890", "111111", clock.t.Add(5*time.Minute)))
	require.NoError(t, err)

	err = repo.MarkVerified(ctx, acc.ID, "999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.MarkVerified(ctx, acc.ID, "111111"))

	v, err := repo.FindVerified(ctx, "x@x.com", "+911234567890")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, acc.ID, v.ID)
	assert.True(t, v.Verified)
	assert.Nil(t, v.OTPCode)
	assert.Nil(t, v.OTPExpiresAt)

	// a second promotion of the same record is rejected
	err = repo.MarkVerified(ctx, acc.ID, "111111")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryRepository_MarkVerifiedUniqueIdentity(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMemoryRepository(clock.Now)

	first, err := repo.CreatePending(ctx, pending("a@x.com", "+911234567890", "111111", clock.t.Add(5*time.Minute)))
	require.NoError(t, err)
	second, err := repo.CreatePending(ctx, pending("b@x.com", "+911234567890", "222222", clock.t.Add(5*time.Minute)))
	require.NoError(t, err)

	require.NoError(t, repo.MarkVerified(ctx, first.ID, "111111"))
	err = repo.MarkVerified(ctx, second.ID, "222222")
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
}

func TestMemoryRepository_DeleteStalePending(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMemoryRepository(clock.Now)

	old, err := repo.CreatePending(ctx, pending("a@x.com", "+911234567890", "111111", clock.t.Add(-48*time.Hour)))
	require.NoError(t, err)
	_, err = repo.CreatePending(ctx, pending("b@x.com", "+911234567891", "222222", clock.t.Add(5*time.Minute)))
	require.NoError(t, err)
	verified, err := repo.CreatePending(ctx, pending("c@x.com", "+911234567892", "333333", clock.t.Add(-48*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, repo.MarkVerified(ctx, verified.ID, "333333"))

	n, err := repo.DeleteStalePending(ctx, clock.t.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	c, err := repo.CountPending(ctx, old.Email, old.Phone)
	require.NoError(t, err)
	assert.Zero(t, c)

	v, err := repo.FindVerified(ctx, "c@x.com", "")
	require.NoError(t, err)
	assert.NotNil(t, v)
}
