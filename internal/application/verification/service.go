package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/catalog-accounts/internal/domain"
	"github.com/catalog-accounts/internal/infrastructure/notify"
	"github.com/catalog-accounts/internal/pkg/id"
	"github.com/catalog-accounts/internal/pkg/password"
)

// DefaultCodeTTL is how long an issued code stays usable.
const DefaultCodeTTL = 5 * time.Minute

type SignupCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Channel string `json:"channel" validate:"omitempty,oneof=email sms"`
}

type CompleteResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type Service interface {
	InitiateSignup(ctx context.Context, email string) error
	CompleteSignup(ctx context.Context, req domain.SignupRequest) (*domain.Account, error)
	InitiateReset(ctx context.Context, req ResetRequest) error
	CompleteReset(ctx context.Context, email, otp, newPassword string) error
}

type codeStore interface {
	Issue(ctx context.Context, subjectKey, purpose, code string, ttl time.Duration) (*domain.OneTimeCode, error)
	VerifyAndConsume(ctx context.Context, subjectKey, purpose, code string) error
	Revoke(ctx context.Context, subjectKey, code string) error
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdatePasswordHash(ctx context.Context, accountID, hash string) error
}

type notifier interface {
	Send(ctx context.Context, channel, recipient, subject, body string) error
}

type codeGenerator interface {
	Generate() string
}

type recorder interface {
	RecordCodeIssued(purpose string)
	RecordCodeVerified(purpose string)
	RecordCodeRejected(purpose, reason string)
	RecordNotifyFailure(channel string)
}

type service struct {
	codes     codeStore
	accounts  accountStore
	notifier  notifier
	generator codeGenerator
	metrics   recorder
	ttl       time.Duration
}

type ServiceDeps struct {
	Codes     codeStore
	Accounts  accountStore
	Notifier  notifier
	Generator codeGenerator
	Metrics   recorder
	CodeTTL   time.Duration
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		codes:     deps.Codes,
		accounts:  deps.Accounts,
		notifier:  deps.Notifier,
		generator: deps.Generator,
		metrics:   deps.Metrics,
		ttl:       deps.CodeTTL,
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.ttl <= 0 {
		s.ttl = DefaultCodeTTL
	}
	return s
}

func (s *service) InitiateSignup(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return s.issue(ctx, email, notify.ChannelEmail, email, domain.PurposeSignup, "Confirm your account")
}

func (s *service) CompleteSignup(ctx context.Context, req domain.SignupRequest) (*domain.Account, error) {
	email := domain.NormalizeEmail(req.Email)
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.consume(ctx, email, domain.PurposeSignup, req.OTP); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:    id.New(),
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		Mobile:       req.Mobile,
		PasswordHash: hash,
		Interests:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a.Sanitized(), nil
}

func (s *service) InitiateReset(ctx context.Context, req ResetRequest) error {
	email := domain.NormalizeEmail(req.Email)
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("account not found: %w", domain.ErrNotFound)
		}
		return err
	}
	channel, recipient := notify.ChannelEmail, a.Email
	if req.Channel == notify.ChannelSMS {
		if a.Mobile == nil || *a.Mobile == "" {
			return fmt.Errorf("account has no mobile number: %w", domain.ErrBadRequest)
		}
		channel, recipient = notify.ChannelSMS, *a.Mobile
	}
	return s.issue(ctx, email, channel, recipient, domain.PurposeReset, "Password recovery code")
}

func (s *service) CompleteReset(ctx context.Context, email, otp, newPassword string) error {
	email = domain.NormalizeEmail(email)
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.consume(ctx, email, domain.PurposeReset, otp); err != nil {
		return err
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePasswordHash(ctx, a.AccountID, hash)
}

// hashPassword maps bcrypt's byte limit onto ErrBadRequest. Callers hash
// before consuming a code.
func hashPassword(pw string) (string, error) {
	hash, err := password.Hash(pw)
	if errors.Is(err, password.ErrTooLong) {
		return "", fmt.Errorf("password longer than %d bytes: %w", password.MaxBytes, domain.ErrBadRequest)
	}
	return hash, err
}

// issue stores a fresh code for subjectKey, superseding any earlier one, and
// delivers it. A failed delivery revokes the code so nothing unreachable
// stays live.
func (s *service) issue(ctx context.Context, subjectKey, channel, recipient, purpose, subject string) error {
	code := s.generator.Generate()
	if _, err := s.codes.Issue(ctx, subjectKey, purpose, code, s.ttl); err != nil {
		return err
	}
	s.metrics.RecordCodeIssued(purpose)

	if err := s.notifier.Send(ctx, channel, recipient, subject, codeMessage(code, s.ttl)); err != nil {
		slog.Warn("code delivery failed", "purpose", purpose, "channel", channel, "err", err)
		s.metrics.RecordNotifyFailure(channel)
		if rerr := s.codes.Revoke(ctx, subjectKey, code); rerr != nil {
			slog.Error("failed to revoke undelivered code", "purpose", purpose, "err", rerr)
		}
		return fmt.Errorf("deliver code: %w: %w", domain.ErrTransient, err)
	}
	return nil
}

// codeMessage is the notification body carrying code. The first line is
// always "Your code: <code>".
func codeMessage(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your code: %s\nIt expires in %s.", code, humanDuration(ttl))
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Minute:
		return "1 minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	case d == time.Second:
		return "1 second"
	case d%time.Second == 0:
		return fmt.Sprintf("%d seconds", d/time.Second)
	default:
		return d.String()
	}
}

// consume verifies and burns the subject's code. Mismatch and expiry are
// told apart in logs and metrics only.
func (s *service) consume(ctx context.Context, subjectKey, purpose, code string) error {
	err := s.codes.VerifyAndConsume(ctx, subjectKey, purpose, code)
	if err == nil {
		s.metrics.RecordCodeVerified(purpose)
		return nil
	}
	if !errors.Is(err, domain.ErrInvalidOrExpiredCode) {
		return err
	}
	reason := "invalid"
	if errors.Is(err, domain.ErrCodeExpired) {
		reason = "expired"
	}
	slog.Debug("code rejected", "purpose", purpose, "reason", reason)
	s.metrics.RecordCodeRejected(purpose, reason)
	return domain.ErrInvalidOrExpiredCode
}

type nopRecorder struct{}

func (nopRecorder) RecordCodeIssued(string)           {}
func (nopRecorder) RecordCodeVerified(string)         {}
func (nopRecorder) RecordCodeRejected(string, string) {}
func (nopRecorder) RecordNotifyFailure(string)        {}
