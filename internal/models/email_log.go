package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType values for outbound notifications.
const (
	EmailTypePrompt    = "prompt"
	EmailTypeReminder  = "reminder"
	EmailTypeChase     = "chase"
	EmailTypeBulkChase = "bulk_chase"
	EmailTypeReport    = "report"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusSent   = "sent"
	EmailLogStatusFailed = "failed"
)

// EmailLog records every outbound send attempt, success or failure. It is an
// audit record only, never a decision input.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	WorkspaceID    *uuid.UUID `json:"workspace_id,omitempty"`
	MemberID       *uuid.UUID `json:"member_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
