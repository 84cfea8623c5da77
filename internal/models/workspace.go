package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkspaceStatus lifecycle values. Workspaces are never hard-deleted.
const (
	WorkspaceActive   = "active"
	WorkspaceInactive = "inactive"
)

// Workspace represents an isolated tenant: one manager, an allow-listed set
// of email domains, and its own members, submissions and reports.
type Workspace struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ManagerEmail string    `json:"manager_email"`
	ManagerName  string    `json:"manager_name"`
	Domains      []string  `json:"domains"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DomainAllowed reports whether the email's domain is in the workspace
// allow-list. Comparison is case-insensitive; an empty allow-list admits
// nobody.
func (w *Workspace) DomainAllowed(email string) bool {
	return DomainInList(email, w.Domains)
}

// WorkspaceSettings holds per-workspace notification cadence and the sender
// display name used in outbound mail.
type WorkspaceSettings struct {
	WorkspaceID  uuid.UUID `json:"workspace_id"`
	PromptDay    string    `json:"prompt_day"`
	PromptTime   string    `json:"prompt_time"`
	ReminderDay  string    `json:"reminder_day"`
	ReminderTime string    `json:"reminder_time"`
	SenderName   string    `json:"sender_name"`
	UpdatedAt    time.Time `json:"updated_at"`
}
