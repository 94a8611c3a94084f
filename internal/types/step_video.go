package types

import (
	"time"

	"github.com/google/uuid"
)

// StepVideoSubmission is the step-4/5/6 video variant of the evidence
// sub-ledger. Exactly one of SupplierID / OperatorID is set per submission;
// the viewer-facing source is derived from which one, never stored.
type StepVideoSubmission struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_step_video_key;index" json:"item_id"`
	StepNumber int        `gorm:"not null;uniqueIndex:uq_step_video_key;column:step_number" json:"step_number"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	OperatorID *uuid.UUID `gorm:"type:uuid;index" json:"operator_id,omitempty"`
	Version    int        `gorm:"not null;uniqueIndex:uq_step_video_key;column:version" json:"version"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`

	Links []StepVideoLink `gorm:"foreignKey:SubmissionID;references:ID" json:"links,omitempty"`
}

func (StepVideoSubmission) TableName() string {
	return "step_video_submission"
}

// Source reports who submitted the video, derived from the non-null actor
// column.
func (s *StepVideoSubmission) Source() string {
	if s == nil {
		return ""
	}
	if s.SupplierID != nil {
		return VideoSourceSupplier
	}
	if s.OperatorID != nil {
		return VideoSourceOperator
	}
	return ""
}

type StepVideoLink struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;index" json:"submission_id"`
	Provider     string    `gorm:"not null;column:provider" json:"provider"`
	URL          string    `gorm:"not null;column:url" json:"url"`
	SortOrder    int       `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (StepVideoLink) TableName() string {
	return "step_video_link"
}
