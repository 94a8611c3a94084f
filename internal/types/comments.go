package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StepComment is an immutable designer comment on a timeline step.
type StepComment struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID       uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	StepNumber   int       `gorm:"not null;column:step_number" json:"step_number"`
	DesignerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"designer_id"`
	MediaVersion *int      `gorm:"column:media_version" json:"media_version,omitempty"`
	Text         string    `gorm:"type:text;not null;column:text" json:"text"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (StepComment) TableName() string {
	return "step_comment"
}

// EvidenceComment is an immutable comment anchored to one evidence
// submission, read back in chronological order.
type EvidenceComment struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EvidenceID   uuid.UUID `gorm:"type:uuid;not null;index" json:"evidence_id"`
	AuthorUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"author_user_id"`
	Text         string    `gorm:"type:text;not null;column:text" json:"text"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (EvidenceComment) TableName() string {
	return "evidence_comment"
}

// ProjectComment is the one mutable comment entity: owner (or admin) may
// update or soft-delete it. Threading hangs off ParentCommentID.
type ProjectComment struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project         *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	AuthorUserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_user_id"`
	ParentCommentID *uuid.UUID     `gorm:"type:uuid;index" json:"parent_comment_id,omitempty"`
	ItemID          *uuid.UUID     `gorm:"type:uuid;index" json:"item_id,omitempty"`
	VideoID         *uuid.UUID     `gorm:"type:uuid;index" json:"video_id,omitempty"`
	Text            string         `gorm:"type:text;not null;column:text" json:"text"`
	IsUrgent        bool           `gorm:"not null;default:false;column:is_urgent" json:"is_urgent"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ProjectComment) TableName() string {
	return "project_comment"
}
