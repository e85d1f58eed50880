package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veyra/adaptive-auth/internal/domain"
	"github.com/veyra/adaptive-auth/internal/infra"
)

func TestMemorySink_RecordsEvents(t *testing.T) {
	sink := NewMemorySink()

	event := domain.NewSecurityEvent(domain.EventAuthentication, domain.SeverityHigh, "user-1")
	event.Score = 55
	require.NoError(t, sink.RecordSecurityEvent(context.Background(), event))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "user-1", events[0].UserID)
	assert.Equal(t, 55, events[0].Score)
}

func TestMemorySink_RecordsAnomalies(t *testing.T) {
	sink := NewMemorySink()

	err := sink.RecordAnomalyDetection(context.Background(), "high_risk_login", 0.7, "user-1",
		[]string{"New device detected"})
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAnomalyDetection, events[0].Type)
	assert.Equal(t, "high_risk_login", events[0].AnomalyType)
	assert.InDelta(t, 0.7, events[0].Confidence, 1e-9)
}

func TestKafkaSink_DisabledProducerIsNoop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	producer := infra.NewKafkaProducer("", false, logger)
	sink := NewKafkaSink(producer, "security-events", logger)

	event := domain.NewSecurityEvent(domain.EventAuthentication, domain.SeverityCritical, "user-1")
	assert.NoError(t, sink.RecordSecurityEvent(context.Background(), event))
}
