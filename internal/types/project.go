package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project carries no owner of its own; access is wholly derived from the
// parent board.
type Project struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"board_id"`
	Board     *Board         `gorm:"constraint:OnDelete:CASCADE;foreignKey:BoardID;references:ID" json:"board,omitempty"`
	Name      string         `gorm:"type:varchar(255);not null;column:name" json:"name"`
	Status    string         `gorm:"not null;default:'draft';column:status" json:"status"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string {
	return "project"
}
