package service

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/pkg/kafka"
)

// Recorder is the audit/metrics sink. It is write-only and best-effort: a
// sink failure never rolls back the transition it describes.
type Recorder interface {
	Record(ctx context.Context, e model.AuditEvent)
}

type kafkaRecorder struct {
	producer sarama.SyncProducer
	log      *zap.Logger
}

func NewKafkaRecorder(producer sarama.SyncProducer, log *zap.Logger) Recorder {
	return &kafkaRecorder{
		producer: producer,
		log:      log.Named("audit"),
	}
}

func (r *kafkaRecorder) Record(_ context.Context, e model.AuditEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		r.log.Error("marshal audit event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{Topic: kafka.AuditTopic, Value: sarama.StringEncoder(data)}
	if _, _, err := r.producer.SendMessage(msg); err != nil {
		r.log.Warn("audit sink unreachable", zap.String("event", e.Event), zap.Error(err))
	}
}

type nopRecorder struct{}

func NewNopRecorder() Recorder { return nopRecorder{} }

func (nopRecorder) Record(context.Context, model.AuditEvent) {}
