// Package service manages the user type catalogue.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"storefront-auth/backend/internal/telemetry"
	"storefront-auth/backend/internal/usertype/domain"
	usertyperepo "storefront-auth/backend/internal/usertype/repository"
)

var (
	ErrValidation = errors.New("user type name is required")
	ErrConflict   = errors.New("user type already exists")
	// ErrNotFound is returned by List when the catalogue is empty.
	ErrNotFound = errors.New("no user types found")
)

// Repo is the persistence the service needs.
type Repo interface {
	Insert(ctx context.Context, ut *domain.UserType) error
	List(ctx context.Context) ([]*domain.UserType, error)
}

const defaultRepoTimeout = 5 * time.Second

// Service creates and lists user types.
type Service struct {
	repo        Repo
	repoTimeout time.Duration
	now         func() time.Time
	newID       func() string
	metrics     *telemetry.Metrics
	tracer      trace.Tracer
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithRepoTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.repoTimeout = d
		}
	}
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(repo Repo, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		repoTimeout: defaultRepoTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
		tracer:      noop.NewTracerProvider().Tracer(""),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a user type. The name is trimmed; a name that differs from an existing one only by
// case is a conflict.
func (s *Service) Create(ctx context.Context, name string) (ut domain.UserType, err error) {
	ctx, end := s.begin(ctx, "create_user_type")
	defer func() { end(err) }()

	name = domain.NormalizeName(name)
	if name == "" {
		return domain.UserType{}, ErrValidation
	}
	now := s.now().UTC()
	ut = domain.UserType{ID: s.newID(), Name: name, CreatedAt: now, UpdatedAt: now}

	ctx, cancel := context.WithTimeout(ctx, s.repoTimeout)
	defer cancel()
	if err := s.repo.Insert(ctx, &ut); err != nil {
		if errors.Is(err, usertyperepo.ErrDuplicateName) {
			return domain.UserType{}, ErrConflict
		}
		return domain.UserType{}, fmt.Errorf("create user type: %w", err)
	}
	s.logger.Info("user type created", zap.String("user_type_id", ut.ID), zap.String("name", ut.Name))
	return ut, nil
}

// List returns every user type, oldest first, or ErrNotFound when there are none.
func (s *Service) List(ctx context.Context) (out []domain.UserType, err error) {
	ctx, end := s.begin(ctx, "list_user_types")
	defer func() { end(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.repoTimeout)
	defer cancel()
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user types: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	out = make([]domain.UserType, 0, len(items))
	for _, ut := range items {
		out = append(out, *ut)
	}
	return out, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "unexpected"
	}
}

func (s *Service) begin(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "usertype."+op)
	return ctx, func(err error) {
		if err != nil {
			r := reason(err)
			span.SetAttributes(attribute.String("usertype.outcome", r))
			if r == "unexpected" {
				span.RecordError(err)
				span.SetStatus(codes.Error, r)
			}
			s.metrics.Record(ctx, op, telemetry.OutcomeFailure, r)
		} else {
			s.metrics.Record(ctx, op, telemetry.OutcomeSuccess, "")
		}
		span.End()
	}
}
