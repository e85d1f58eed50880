package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event severities, lowest to highest.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Event types.
const (
	EventAuthentication   = "authentication"
	EventAnomalyDetection = "anomaly_detection"
)

// SecurityEvent is the structured record published for security-relevant
// outcomes (elevated risk, blocks, anomalies).
type SecurityEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	UserID      string    `json:"user_id"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Factors     []string  `json:"factors,omitempty"`
	Score       int       `json:"score,omitempty"`
	AnomalyType string    `json:"anomaly_type,omitempty"` // set for anomaly events
	Confidence  float64   `json:"confidence,omitempty"`   // set for anomaly events
	CreatedAt   time.Time `json:"created_at"`
}

// NewSecurityEvent builds an event with a fresh ID and timestamp.
func NewSecurityEvent(eventType, severity, userID string) SecurityEvent {
	return SecurityEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Severity:  severity,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}
