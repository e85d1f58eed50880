package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account that can authenticate against the platform.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LoginAttempt is one recorded credential check, successful or not. The
// attempt history feeds the failed-attempts risk signal.
type LoginAttempt struct {
	ID        int64
	UserID    *uuid.UUID // nil when the email did not resolve to a user
	Email     string
	IPAddress string
	Location  string
	Success   bool
	CreatedAt time.Time
}

// ValidateEmail performs a minimal sanity check on an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
