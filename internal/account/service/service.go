// Package service implements the account lifecycle: registration with email OTP, verification,
// sign-in, and password reset.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"storefront-auth/backend/internal/account/domain"
	accountrepo "storefront-auth/backend/internal/account/repository"
	"storefront-auth/backend/internal/logging"
	"storefront-auth/backend/internal/notify"
	"storefront-auth/backend/internal/otp"
	"storefront-auth/backend/internal/security"
	"storefront-auth/backend/internal/telemetry"
)

// AccountRepo is the account persistence the service needs.
type AccountRepo interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Insert(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, a *domain.Account) error
}

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs and verifies session and reset tokens.
type TokenIssuer interface {
	IssueSession(accountID, email, name string) (string, time.Time, error)
	IssueReset(accountID, email string) (string, time.Time, error)
	VerifySession(token string) (*security.SessionClaims, error)
	VerifyReset(token string) (*security.ResetClaims, error)
}

// Config holds lifecycle timing and link settings.
type Config struct {
	// OTPTTL is the verification code window. Default 5m.
	OTPTTL time.Duration
	// ResetTTL is only used to phrase the reset email; the token carries its own expiry.
	ResetTTL time.Duration
	// RepoTimeout bounds each repository call. Default 5s.
	RepoTimeout time.Duration
	// NotifyTimeout bounds each email delivery. Default 10s.
	NotifyTimeout time.Duration
	// ResetURLBase is the page that receives ?token=.
	ResetURLBase string
}

func (c Config) withDefaults() Config {
	if c.OTPTTL <= 0 {
		c.OTPTTL = otp.DefaultTTL
	}
	if c.ResetTTL <= 0 {
		c.ResetTTL = 15 * time.Minute
	}
	if c.RepoTimeout <= 0 {
		c.RepoTimeout = 5 * time.Second
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = 10 * time.Second
	}
	return c
}

// SignInResult is returned by a successful SignIn.
type SignInResult struct {
	Token     string
	ExpiresAt time.Time
	Profile   domain.Profile
}

// Service owns every mutation of Account records. It holds no per-request state.
type Service struct {
	repo     AccountRepo
	hasher   PasswordHasher
	tokens   TokenIssuer
	notifier notify.Notifier
	cfg      Config

	otps    *otp.Issuer
	otpGen  otp.Generator
	now     func() time.Time
	newID   func() string
	events  telemetry.EventEmitter
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	logger  *zap.Logger
}

// New returns a Service. Delivery is awaited under Config.NotifyTimeout; a failed delivery is
// reported as ErrDeliveryFailed and the state change that preceded it is kept.
func New(repo AccountRepo, hasher PasswordHasher, tokens TokenIssuer, notifier notify.Notifier, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg.withDefaults(),
		otpGen:   otp.RandomGenerator{},
		now:      time.Now,
		newID:    uuid.NewString,
		events:   telemetry.NopEmitter{},
		tracer:   noop.NewTracerProvider().Tracer(""),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.otps = otp.NewIssuer(s.otpGen, s.cfg.OTPTTL)
	return s
}

// Register creates a pending account and emails it a verification code.
// On ErrDeliveryFailed the account exists and its profile is still returned.
func (s *Service) Register(ctx context.Context, name, email, password string) (profile domain.Profile, err error) {
	ctx, end := s.begin(ctx, "register")
	defer func() { end(err) }()

	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.Profile{}, ErrValidation
	}

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, err
	}
	if existing != nil {
		return domain.Profile{}, ErrConflict
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("register: %w", err)
	}
	now := s.now().UTC()
	code, challenge, err := s.otps.NewChallenge(now)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("register: generate otp: %w", err)
	}
	acct := &domain.Account{
		ID:           s.newID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		OTP:          challenge,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := acct.Validate(); err != nil {
		return domain.Profile{}, fmt.Errorf("register: %w", err)
	}
	if err := s.withRepoTimeout(ctx, func(ctx context.Context) error { return s.repo.Insert(ctx, acct) }); err != nil {
		if errors.Is(err, accountrepo.ErrDuplicateEmail) {
			return domain.Profile{}, ErrConflict
		}
		return domain.Profile{}, fmt.Errorf("register: insert account: %w", err)
	}
	s.emit(telemetry.EventAccountRegistered, acct)

	if err := s.sendOTP(ctx, acct, code); err != nil {
		return acct.Profile(), err
	}
	return acct.Profile(), nil
}

// VerifyOTP marks the account verified if code matches the pending challenge and has not expired.
// A failed attempt leaves the challenge in place.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (profile domain.Profile, err error) {
	ctx, end := s.begin(ctx, "verify_otp")
	defer func() { end(err) }()

	acct, err := s.mustFindByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, err
	}
	if !acct.HasPendingOTP() {
		return domain.Profile{}, ErrNoPendingOTP
	}
	if !acct.OTP.Matches(code) {
		return domain.Profile{}, ErrInvalidCode
	}
	now := s.now().UTC()
	if acct.OTP.Expired(now) {
		return domain.Profile{}, ErrExpired
	}
	acct.MarkVerified(now)
	if err := s.update(ctx, acct); err != nil {
		return domain.Profile{}, fmt.Errorf("verify otp: %w", err)
	}
	s.emit(telemetry.EventAccountVerified, acct)
	return acct.Profile(), nil
}

// ResendOTP replaces the pending challenge with a fresh one and emails it. The old code is dead
// as soon as the new challenge is stored, even if delivery then fails; the profile is returned
// with ErrDeliveryFailed.
func (s *Service) ResendOTP(ctx context.Context, email string) (profile domain.Profile, err error) {
	ctx, end := s.begin(ctx, "resend_otp")
	defer func() { end(err) }()

	acct, err := s.mustFindByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, err
	}
	if acct.IsVerified {
		return domain.Profile{}, ErrAlreadyVerified
	}
	now := s.now().UTC()
	code, challenge, err := s.otps.NewChallenge(now)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("resend otp: generate: %w", err)
	}
	acct.SetChallenge(challenge, now)
	if err := s.update(ctx, acct); err != nil {
		return domain.Profile{}, fmt.Errorf("resend otp: %w", err)
	}
	s.emit(telemetry.EventOTPResent, acct)
	return acct.Profile(), s.sendOTP(ctx, acct, code)
}

// SignIn issues a session token. Verification is checked before the password. For
// ErrUnverified and ErrInvalidCredential, AccountIDOf(err) names the account.
func (s *Service) SignIn(ctx context.Context, email, password string) (res *SignInResult, err error) {
	ctx, end := s.begin(ctx, "sign_in")
	defer func() { end(err) }()

	acct, err := s.mustFindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !acct.IsVerified {
		return nil, &accountError{accountID: acct.ID, err: ErrUnverified}
	}
	if !s.hasher.Verify(password, acct.PasswordHash) {
		return nil, &accountError{accountID: acct.ID, err: ErrInvalidCredential}
	}
	token, exp, err := s.tokens.IssueSession(acct.ID, acct.Email, acct.Name)
	if err != nil {
		return nil, fmt.Errorf("sign in: issue token: %w", err)
	}
	s.emit(telemetry.EventAccountSignedIn, acct)
	return &SignInResult{Token: token, ExpiresAt: exp, Profile: acct.Profile()}, nil
}

// RequestPasswordReset emails a reset link carrying a signed reset token. No account state changes.
// The profile is returned with ErrDeliveryFailed.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (profile domain.Profile, err error) {
	ctx, end := s.begin(ctx, "request_password_reset")
	defer func() { end(err) }()

	acct, err := s.mustFindByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, err
	}
	token, _, err := s.tokens.IssueReset(acct.ID, acct.Email)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("password reset: issue token: %w", err)
	}
	msg, err := notify.ResetMessage(acct.Email, acct.Name, s.cfg.ResetURLBase, token, s.cfg.ResetTTL)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("password reset: build message: %w", err)
	}
	s.emit(telemetry.EventPasswordResetRequested, acct)
	return acct.Profile(), s.deliver(ctx, msg)
}

// UpdatePassword sets a new password for the account named by resetToken.
// The token is not consumed; it keeps working until it expires.
func (s *Service) UpdatePassword(ctx context.Context, resetToken, newPassword string) (profile domain.Profile, err error) {
	ctx, end := s.begin(ctx, "update_password")
	defer func() { end(err) }()

	if strings.TrimSpace(resetToken) == "" {
		return domain.Profile{}, ErrMissingToken
	}
	claims, err := s.tokens.VerifyReset(resetToken)
	if err != nil {
		return domain.Profile{}, ErrInvalidToken
	}
	if newPassword == "" {
		return domain.Profile{}, ErrValidation
	}
	acct, err := s.findByID(ctx, claims.AccountID)
	if err != nil {
		return domain.Profile{}, err
	}
	if acct == nil {
		return domain.Profile{}, ErrNotFound
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("update password: %w", err)
	}
	acct.SetPasswordHash(hash, s.now().UTC())
	if err := s.update(ctx, acct); err != nil {
		return domain.Profile{}, fmt.Errorf("update password: %w", err)
	}
	s.emit(telemetry.EventPasswordUpdated, acct)
	return acct.Profile(), nil
}

// Authenticate verifies a session token and returns its claims.
func (s *Service) Authenticate(token string) (*security.SessionClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.tokens.VerifySession(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Profile returns the public view of the account with accountID.
func (s *Service) Profile(ctx context.Context, accountID string) (profile domain.Profile, err error) {
	ctx, end := s.begin(ctx, "profile")
	defer func() { end(err) }()

	acct, err := s.findByID(ctx, accountID)
	if err != nil {
		return domain.Profile{}, err
	}
	if acct == nil {
		return domain.Profile{}, ErrNotFound
	}
	return acct.Profile(), nil
}

// hashPassword reports a password bcrypt cannot take as ErrValidation.
func (s *Service) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password exceeds %d bytes", ErrValidation, security.MaxPasswordBytes)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func (s *Service) sendOTP(ctx context.Context, acct *domain.Account, code string) error {
	msg, err := notify.OTPMessage(acct.Email, acct.Name, code, s.otps.TTL())
	if err != nil {
		return fmt.Errorf("otp: build message: %w", err)
	}
	return s.deliver(ctx, msg)
}

// deliver awaits the notifier under NotifyTimeout. No retry.
func (s *Service) deliver(ctx context.Context, msg notify.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
	defer cancel()
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("email delivery failed",
			zap.String("kind", string(msg.Kind)),
			zap.String("recipient_domain", logging.EmailDomain(msg.To)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

func (s *Service) mustFindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, ErrValidation
	}
	acct, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrNotFound
	}
	return acct, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acct *domain.Account
	err := s.withRepoTimeout(ctx, func(ctx context.Context) error {
		var err error
		acct, err = s.repo.FindByEmail(ctx, email)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return acct, nil
}

func (s *Service) findByID(ctx context.Context, id string) (*domain.Account, error) {
	var acct *domain.Account
	err := s.withRepoTimeout(ctx, func(ctx context.Context) error {
		var err error
		acct, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return acct, nil
}

func (s *Service) update(ctx context.Context, acct *domain.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}
	err := s.withRepoTimeout(ctx, func(ctx context.Context) error { return s.repo.Update(ctx, acct) })
	if errors.Is(err, accountrepo.ErrAccountNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) withRepoTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RepoTimeout)
	defer cancel()
	return fn(ctx)
}

func (s *Service) emit(eventType string, acct *domain.Account) {
	telemetry.EmitAsync(s.events, s.logger, telemetry.NewEvent(eventType, acct.ID, acct.Email, s.now()))
}

// begin opens a span for op and returns a func that records the outcome on the span and counter.
func (s *Service) begin(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "account."+op, trace.WithAttributes(attribute.String("auth.operation", op)))
	return ctx, func(err error) {
		if err != nil {
			reason := Reason(err)
			span.SetAttributes(attribute.String("auth.outcome", reason))
			if !IsExpected(err) || errors.Is(err, ErrDeliveryFailed) {
				span.RecordError(err)
				span.SetStatus(codes.Error, reason)
			}
			s.metrics.Record(ctx, op, telemetry.OutcomeFailure, reason)
		} else {
			s.metrics.Record(ctx, op, telemetry.OutcomeSuccess, "")
		}
		span.End()
	}
}
