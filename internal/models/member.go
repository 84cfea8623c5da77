package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Member roles within a workspace.
const (
	MemberRoleMember = "member"
	MemberRoleAdmin  = "admin"
)

// WorkspaceMember is a person's membership in one workspace. The same person
// may hold memberships in multiple workspaces as distinct records.
type WorkspaceMember struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	FirstName   string    `json:"first_name"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FirstNameOf derives a first name from a display name, falling back to the
// local part of the email when the name is empty.
func FirstNameOf(fullName, email string) string {
	name := strings.TrimSpace(fullName)
	if name != "" {
		if i := strings.IndexAny(name, " \t"); i > 0 {
			return name[:i]
		}
		return name
	}
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// DomainInList reports whether the email's domain appears in domains,
// case-insensitively. An empty list admits nobody.
func DomainInList(email string, domains []string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range domains {
		if strings.EqualFold(strings.TrimSpace(d), domain) {
			return true
		}
	}
	return false
}
