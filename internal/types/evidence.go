package types

import (
	"time"

	"github.com/google/uuid"
)

// StepEvidenceSubmission is one immutable supplier evidence submission for a
// timeline step. Corrections never edit a row; they land as a new version
// under the same (item, step, supplier) key. The unique index on the key plus
// version backs the optimistic version assignment.
type StepEvidenceSubmission struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_step_evidence_key;index" json:"item_id"`
	TimelineStepID int       `gorm:"not null;uniqueIndex:uq_step_evidence_key;column:timeline_step_id" json:"timeline_step_id"`
	SupplierID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_step_evidence_key;index" json:"supplier_id"`
	Version        int       `gorm:"not null;uniqueIndex:uq_step_evidence_key;column:version" json:"version"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`

	Links []EvidenceLink `gorm:"foreignKey:SubmissionID;references:ID" json:"links,omitempty"`
}

func (StepEvidenceSubmission) TableName() string {
	return "step_evidence_submission"
}

type EvidenceLink struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;index" json:"submission_id"`
	Provider     string    `gorm:"not null;column:provider" json:"provider"`
	URL          string    `gorm:"not null;column:url" json:"url"`
	SortOrder    int       `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (EvidenceLink) TableName() string {
	return "evidence_link"
}
