package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/luxsuv-accounts/pkg/events"
	"github.com/diagnosis/luxsuv-accounts/pkg/lock"
	"github.com/diagnosis/luxsuv-accounts/pkg/logger"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/domain"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/repository"
)

type AccountService interface {
	// Register creates a pending account and sends its code. The returned
	// message is shown to the user.
	Register(ctx context.Context, req *domain.RegisterRequest) (string, error)
	VerifyRegister(ctx context.Context, req *domain.VerifyRequest) (*VerifyResult, error)
}

type VerifyResult struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(accountID string) (string, time.Time, error)
}

type Options struct {
	MaxPendingAttempts int
	Phones             domain.PhonePolicy
}

type accountService struct {
	repo       repository.AccountRepository
	locker     lock.Locker
	duplicates *DuplicateResolver
	dispatcher *Dispatcher
	tokens     TokenIssuer
	events     events.Publisher
	phones     domain.PhonePolicy

	now          func() time.Time
	hashPassword func(string) (string, error)
}

func NewAccountService(
	repo repository.AccountRepository,
	locker lock.Locker,
	dispatcher *Dispatcher,
	tokens TokenIssuer,
	publisher events.Publisher,
	opts Options,
) AccountService {
	return &accountService{
		repo:         repo,
		locker:       locker,
		duplicates:   NewDuplicateResolver(repo, opts.MaxPendingAttempts),
		dispatcher:   dispatcher,
		tokens:       tokens,
		events:       publisher,
		phones:       opts.Phones,
		now:          time.Now,
		hashPassword: hashPassword,
	}
}

func hashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

func internalError(op string, err error) error {
	return domain.WrapError(domain.ErrInternal, domain.MsgInternal, fmt.Errorf("%s: %w", op, err))
}

// identityKeys names the locks guarding one email and one phone.
func identityKeys(email, phone string) []string {
	return []string{
		"accounts:identity:email:" + email,
		"accounts:identity:phone:" + phone,
	}
}

func (s *accountService) lockIdentity(ctx context.Context, email, phone string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, identityKeys(email, phone)...)
	if err != nil {
		return nil, internalError("lock identity", err)
	}
	return unlock, nil
}

func (s *accountService) Register(ctx context.Context, req *domain.RegisterRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(s.phones); err != nil {
		return "", err
	}

	unlock, err := s.lockIdentity(ctx, req.Email, req.Phone)
	if err != nil {
		return "", err
	}
	acc, code, err := s.createPending(ctx, req)
	unlock()
	if err != nil {
		return "", err
	}

	ctx = logger.WithAccountID(ctx, acc.ID)
	logger.InfoContext(ctx, "Pending account created", "method", req.VerificationMethod)

	s.publish(ctx, events.AccountRegistered, events.AccountRegisteredEvent{
		AccountID: acc.ID,
		Email:     acc.Email,
		Phone:     acc.Phone,
		Method:    req.VerificationMethod,
		CreatedAt: acc.CreatedAt,
	})

	return s.dispatcher.Dispatch(ctx, domain.VerificationMethod(req.VerificationMethod), code, acc.Email, acc.Phone)
}

// createPending runs the duplicate gate and inserts the record. Callers hold
// the identity lock.
func (s *accountService) createPending(ctx context.Context, req *domain.RegisterRequest) (*domain.Account, string, error) {
	if err := s.duplicates.Check(ctx, req.Email, req.Phone); err != nil {
		return nil, "", err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, "", internalError("hash password", err)
	}

	code, expiresAt := domain.GenerateOTP(s.now())
	acc, err := s.repo.CreatePending(ctx, domain.NewAccount{
		Name:         req.User,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		OTPCode:      code,
		OTPExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, "", internalError("create pending account", err)
	}
	return acc, code, nil
}

func (s *accountService) VerifyRegister(ctx context.Context, req *domain.VerifyRequest) (*VerifyResult, error) {
	req.Normalize()
	if err := req.Validate(s.phones); err != nil {
		return nil, err
	}

	unlock, err := s.lockIdentity(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	acc, removed, err := s.repo.ReconcilePending(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, internalError("reconcile pending accounts", err)
	}
	if acc == nil {
		return nil, domain.NewError(domain.ErrNotFound, domain.MsgUserNotFound)
	}

	ctx = logger.WithAccountID(ctx, acc.ID)
	if removed > 0 {
		logger.InfoContext(ctx, "Removed superseded pending accounts", "removed", removed)
		s.publish(ctx, events.AccountPendingReconciled, events.AccountPendingReconciledEvent{
			CanonicalID: acc.ID,
			Email:       req.Email,
			Phone:       req.Phone,
			Removed:     removed,
		})
	}

	if !acc.CodeMatches(req.OTP) {
		return nil, domain.NewError(domain.ErrInvalidCode, domain.MsgInvalidOTP)
	}
	now := s.now()
	if acc.CodeExpired(now) {
		return nil, domain.NewError(domain.ErrCodeExpired, domain.MsgOTPExpired)
	}

	if err := s.repo.MarkVerified(ctx, acc.ID, req.OTP); err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, internalError("mark account verified", err)
	}
	acc.Verified = true
	acc.OTPCode = nil
	acc.OTPExpiresAt = nil
	acc.UpdatedAt = now

	token, expiresAt, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return nil, internalError("issue session token", err)
	}

	logger.InfoContext(ctx, "Account verified")
	s.publish(ctx, events.AccountVerified, events.AccountVerifiedEvent{
		AccountID:  acc.ID,
		Email:      acc.Email,
		Phone:      acc.Phone,
		VerifiedAt: now,
	})

	return &VerifyResult{Account: acc, Token: token, ExpiresAt: expiresAt}, nil
}

// publish is best effort; the account state is already committed.
func (s *accountService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.events.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
