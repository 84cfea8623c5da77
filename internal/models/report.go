package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is the generated analysis artifact for one workspace-period.
// (workspace_id, week, year) is unique: regeneration replaces the prior row.
type Report struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Week        int       `json:"week"`
	Year        int       `json:"year"`
	Content     string    `json:"content"`
	Format      string    `json:"format"`
	GeneratedBy string    `json:"generated_by"`
	CreatedAt   time.Time `json:"created_at"`
}
