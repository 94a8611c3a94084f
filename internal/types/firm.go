package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Firm struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string         `gorm:"not null;column:name" json:"name"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Firm) TableName() string {
	return "firm"
}

// FirmMember links a user to a firm. A membership is active iff
// status = active AND left_at IS NULL.
type FirmMember struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FirmID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"firm_id"`
	Firm      *Firm          `gorm:"constraint:OnDelete:CASCADE;foreignKey:FirmID;references:ID" json:"firm,omitempty"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Status    string         `gorm:"not null;default:'active';column:status" json:"status"`
	JoinedAt  time.Time      `gorm:"not null;default:now();column:joined_at" json:"joined_at"`
	LeftAt    *time.Time     `gorm:"column:left_at" json:"left_at,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (FirmMember) TableName() string {
	return "firm_member"
}

// IsActive reports whether the membership currently grants access.
func (m *FirmMember) IsActive() bool {
	return m != nil && m.Status == FirmMemberStatusActive && m.LeftAt == nil
}
