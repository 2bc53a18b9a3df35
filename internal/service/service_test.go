package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/config"
	"github.com/lendinglab/lending-service/internal/idempotency"
	"github.com/lendinglab/lending-service/internal/model"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type captureDispatcher struct {
	mu   sync.Mutex
	sent []model.Notification
	fail error
}

func (d *captureDispatcher) Dispatch(_ context.Context, n model.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.sent = append(d.sent, n)
	return nil
}

func (d *captureDispatcher) subjects() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.sent))
	for _, n := range d.sent {
		out = append(out, n.Subject)
	}
	return out
}

type captureRecorder struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (r *captureRecorder) Record(_ context.Context, e model.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *captureRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event)
	}
	return out
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	svc        *Service
	repo       *fakeRepo
	dispatcher *captureDispatcher
	audit      *captureRecorder
	clock      *fixedClock
}

func newTestEnv(features config.Features) *testEnv {
	repo := newFakeRepo()
	dispatcher := &captureDispatcher{}
	audit := &captureRecorder{}
	cache := idempotency.NewCache(idempotency.NewMemoryStore(), features.IdempotencyEnabled, zap.NewNop())
	clk := &fixedClock{t: testNow}
	svc := NewService(repo, cache, dispatcher, audit, features, zap.NewNop()).WithClock(clk)
	return &testEnv{svc: svc, repo: repo, dispatcher: dispatcher, audit: audit, clock: clk}
}

func allFeatures() config.Features {
	return config.Features{
		BackgroundJobsEnabled:   true,
		NotificationsEnabled:    true,
		OverdueDetectionEnabled: true,
		IdempotencyEnabled:      true,
		AuditLoggingEnabled:     true,
	}
}
