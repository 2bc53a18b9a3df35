package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/pkg/breaker"
	"github.com/lendinglab/lending-service/pkg/kafka"
)

// Dispatcher hands notifications to the delivery collaborator. The engine
// guarantees at least one dispatch attempt per event, not delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, n model.Notification) error
}

type kafkaDispatcher struct {
	producer sarama.SyncProducer
	br       *breaker.Breaker
}

func NewKafkaDispatcher(producer sarama.SyncProducer) Dispatcher {
	return &kafkaDispatcher{
		producer: producer,
		br:       breaker.New(20, 30*time.Second, 0.5, 5),
	}
}

func (d *kafkaDispatcher) Dispatch(_ context.Context, n model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return d.br.Do(func() error {
		msg := &sarama.ProducerMessage{Topic: kafka.NotificationsTopic, Value: sarama.StringEncoder(data)}
		_, _, err := d.producer.SendMessage(msg)
		return err
	})
}

type nopDispatcher struct{}

func NewNopDispatcher() Dispatcher { return nopDispatcher{} }

func (nopDispatcher) Dispatch(context.Context, model.Notification) error { return nil }

// notify is best-effort: dispatch failures are logged and metered, never
// surfaced to the caller.
func (s *Service) notify(ctx context.Context, n model.Notification) {
	if !s.features.NotificationsEnabled {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("subject", n.Subject), zap.Error(err))
		s.record(ctx, "notification_failed", "", "", map[string]any{"subject": n.Subject})
	}
}

// SweepDueNotifications sends "due soon" and "overdue" notices. Each record
// is claimed with a guarded flag flip first, so overlapping runs never
// double-notify. While notifications are disabled nothing is claimed either;
// the notices stay pending for when the flag comes back on.
func (s *Service) SweepDueNotifications(ctx context.Context) error {
	if !s.features.NotificationsEnabled {
		return nil
	}
	now := s.clock.Now()

	dueSoon, err := s.repo.DueSoonNotices(ctx, now, now.Add(dueSoonWindow))
	if err != nil {
		return err
	}
	for _, notice := range dueSoon {
		claimed, err := s.repo.ClaimDueSoonNotice(ctx, notice.RecordID)
		if err != nil {
			return err
		}
		if !claimed {
			continue
		}
		s.notify(ctx, model.Notification{
			RecipientEmail: notice.Email,
			Subject:        "Book due soon",
			BodyTemplate:   "due_soon",
			TemplateData: map[string]any{
				"title":   notice.Title,
				"dueDate": notice.DueDate.Format(time.DateOnly),
			},
		})
	}

	overdue, err := s.repo.OverdueNotices(ctx, now)
	if err != nil {
		return err
	}
	for _, notice := range overdue {
		claimed, err := s.repo.ClaimOverdueNotice(ctx, notice.RecordID)
		if err != nil {
			return err
		}
		if !claimed {
			continue
		}
		s.notify(ctx, model.Notification{
			RecipientEmail: notice.Email,
			Subject:        "Book overdue",
			BodyTemplate:   "overdue",
			TemplateData: map[string]any{
				"title":   notice.Title,
				"dueDate": notice.DueDate.Format(time.DateOnly),
			},
		})
	}
	return nil
}

// notifyBookAvailable serves the first subscriber for a freed copy. The
// claim disables the subscription, making the notice one-shot.
func (s *Service) notifyBookAvailable(ctx context.Context, bookID, title string) {
	if !s.features.NotificationsEnabled {
		return
	}
	u, ok, err := s.repo.ClaimNextSubscriber(ctx, bookID)
	if err != nil {
		s.log.Warn("claim subscriber", zap.String("bookId", bookID), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	s.notify(ctx, model.Notification{
		RecipientEmail: u.Email,
		Subject:        "Book now available",
		BodyTemplate:   "now_available",
		TemplateData:   map[string]any{"title": title},
	})
}
