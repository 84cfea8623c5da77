package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one member's structured answers for one (week, year) period.
// (workspace_id, member_id, week, year) is unique: re-submission in the same
// period overwrites, it never appends.
type Submission struct {
	ID               uuid.UUID `json:"id"`
	WorkspaceID      uuid.UUID `json:"workspace_id"`
	MemberID         uuid.UUID `json:"member_id"`
	Week             int       `json:"week"`
	Year             int       `json:"year"`
	Accomplishments  string    `json:"accomplishments"`
	PriorityProgress string    `json:"priority_progress"`
	Blockers         string    `json:"blockers"`
	Priorities       string    `json:"priorities"`
	Shoutouts        string    `json:"shoutouts"`
	Summary          string    `json:"summary,omitempty"`
	FollowupQuestion string    `json:"followup_question,omitempty"`
	FollowupAnswer   string    `json:"followup_answer,omitempty"`
	SubmittedAt      time.Time `json:"submitted_at"`

	// Joined member fields for display; not columns of the submissions table.
	MemberName  string `json:"member_name,omitempty"`
	MemberEmail string `json:"member_email,omitempty"`
}

// MemberStatus is one member's row in the weekly status view.
type MemberStatus struct {
	MemberID     uuid.UUID  `json:"member_id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	HasSubmitted bool       `json:"has_submitted"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}

// WeeklyStatus summarizes who has and has not submitted for a period.
type WeeklyStatus struct {
	Week      int            `json:"week"`
	Year      int            `json:"year"`
	Total     int            `json:"total"`
	Submitted int            `json:"submitted"`
	Pending   int            `json:"pending"`
	Members   []MemberStatus `json:"members"`
}
