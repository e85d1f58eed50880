// Package events delivers security and anomaly events to the audit pipeline.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/veyra/adaptive-auth/internal/domain"
	"github.com/veyra/adaptive-auth/internal/infra"
)

// SecurityEventSink receives structured security events. Delivery failures
// surface as errors so callers can fail closed.
type SecurityEventSink interface {
	RecordSecurityEvent(ctx context.Context, event domain.SecurityEvent) error
	RecordAnomalyDetection(ctx context.Context, anomalyType string, confidence float64, userID string, factors []string) error
}

// KafkaSink publishes security events to a Kafka topic, keyed by user ID so
// per-user ordering is preserved. The audit consumer persists them.
type KafkaSink struct {
	producer *infra.KafkaProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaSink creates a Kafka-backed sink.
func NewKafkaSink(producer *infra.KafkaProducer, topic string, logger *slog.Logger) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, logger: logger}
}

// RecordSecurityEvent publishes one event.
func (s *KafkaSink) RecordSecurityEvent(ctx context.Context, event domain.SecurityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal security event: %w", err)
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(event.UserID), payload); err != nil {
		return fmt.Errorf("publish security event: %w", err)
	}
	s.logger.Debug("security event published",
		"event_id", event.ID,
		"type", event.Type,
		"severity", event.Severity,
		"user_id", event.UserID,
	)
	return nil
}

// RecordAnomalyDetection publishes an anomaly event.
func (s *KafkaSink) RecordAnomalyDetection(ctx context.Context, anomalyType string, confidence float64, userID string, factors []string) error {
	event := domain.NewSecurityEvent(domain.EventAnomalyDetection, domain.SeverityHigh, userID)
	event.AnomalyType = anomalyType
	event.Confidence = confidence
	event.Factors = factors
	return s.RecordSecurityEvent(ctx, event)
}

// MemorySink records events in memory. Used in tests and when Kafka is
// disabled in local dev.
type MemorySink struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
}

// NewMemorySink creates an in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// RecordSecurityEvent appends the event.
func (s *MemorySink) RecordSecurityEvent(_ context.Context, event domain.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// RecordAnomalyDetection appends an anomaly event.
func (s *MemorySink) RecordAnomalyDetection(_ context.Context, anomalyType string, confidence float64, userID string, factors []string) error {
	event := domain.NewSecurityEvent(domain.EventAnomalyDetection, domain.SeverityHigh, userID)
	event.AnomalyType = anomalyType
	event.Confidence = confidence
	event.Factors = factors
	return s.RecordSecurityEvent(context.Background(), event)
}

// Events returns a copy of everything recorded so far.
func (s *MemorySink) Events() []domain.SecurityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SecurityEvent, len(s.events))
	copy(out, s.events)
	return out
}
