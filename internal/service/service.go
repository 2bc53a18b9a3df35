package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/config"
	"github.com/lendinglab/lending-service/internal/idempotency"
	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/internal/repository"
)

const (
	loanPeriod     = 7 * 24 * time.Hour
	dueSoonWindow  = 48 * time.Hour
	idempotencyTTL = 24 * time.Hour
)

// restrictionThreshold is the aggregate balance above which borrowing locks.
// Strictly greater: a user owing exactly 60.00 may still borrow.
var restrictionThreshold = decimal.New(6000, -2)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	log        *zap.Logger
	repo       repository.Repository
	cache      *idempotency.Cache
	dispatcher Dispatcher
	audit      Recorder
	features   config.Features
	clock      Clock
}

func NewService(repo repository.Repository, cache *idempotency.Cache, dispatcher Dispatcher, audit Recorder, features config.Features, log *zap.Logger) *Service {
	return &Service{
		log:        log,
		repo:       repo,
		cache:      cache,
		dispatcher: dispatcher,
		audit:      audit,
		features:   features,
		clock:      realClock{},
	}
}

// WithClock replaces the time source, for tests.
func (s *Service) WithClock(c Clock) *Service {
	s.clock = c
	return s
}

func (s *Service) GetBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Service) Subscribe(ctx context.Context, username, bookID string) (model.NotificationPreference, error) {
	u, err := s.repo.GetUserByName(ctx, username)
	if err != nil {
		return model.NotificationPreference{}, err
	}
	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		return model.NotificationPreference{}, err
	}
	return s.repo.Subscribe(ctx, u.ID, bookID)
}

func (s *Service) record(ctx context.Context, event, entityID, userID string, details map[string]any) {
	s.audit.Record(ctx, model.AuditEvent{
		Event:      event,
		EntityID:   entityID,
		UserID:     userID,
		OccurredAt: s.clock.Now(),
		Details:    details,
	})
}
