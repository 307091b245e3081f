package service

import (
	"context"

	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/domain"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/repository"
)

// DuplicateResolver decides whether an identity may start another
// registration. It only reads.
type DuplicateResolver struct {
	repo       repository.AccountRepository
	maxPending int
}

func NewDuplicateResolver(repo repository.AccountRepository, maxPending int) *DuplicateResolver {
	return &DuplicateResolver{repo: repo, maxPending: maxPending}
}

// Check returns nil when registration may proceed, an AlreadyRegistered error
// when email or phone belongs to a verified account, and a TooManyAttempts
// error when more than maxPending unverified attempts exist.
func (d *DuplicateResolver) Check(ctx context.Context, email, phone string) error {
	verified, err := d.repo.FindVerified(ctx, email, phone)
	if err != nil {
		return internalError("find verified account", err)
	}
	if verified != nil {
		return domain.NewError(domain.ErrAlreadyRegistered, domain.MsgAlreadyRegistered)
	}

	n, err := d.repo.CountPending(ctx, email, phone)
	if err != nil {
		return internalError("count pending accounts", err)
	}
	if n > d.maxPending {
		return domain.NewError(domain.ErrTooManyAttempts, domain.MsgTooManyAttempts)
	}
	return nil
}
