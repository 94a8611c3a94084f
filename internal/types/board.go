package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Board struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Owner            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerUserID;references:ID" json:"owner,omitempty"`
	OwnerFirmID      *uuid.UUID     `gorm:"type:uuid;index" json:"owner_firm_id,omitempty"`
	OwnerFirm        *Firm          `gorm:"constraint:OnDelete:SET NULL;foreignKey:OwnerFirmID;references:ID" json:"owner_firm,omitempty"`
	Name             string         `gorm:"type:varchar(255);not null;column:name" json:"name"`
	ViewMode         string         `gorm:"not null;default:'grid';column:view_mode" json:"view_mode"`
	LatestLayoutJSON datatypes.JSON `gorm:"type:jsonb;column:latest_layout_json" json:"latest_layout_json,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Board) TableName() string {
	return "board"
}

// BoardItem associates an item with a board. Removal is soft via removed_at
// so add/remove cycles stay on record; active membership = removed_at IS NULL.
type BoardItem struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"board_id"`
	Board         *Board     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BoardID;references:ID" json:"board,omitempty"`
	ItemID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	Item          *Item      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"item,omitempty"`
	AddedByUserID uuid.UUID  `gorm:"type:uuid;not null" json:"added_by_user_id"`
	AddedAt       time.Time  `gorm:"not null;default:now();column:added_at" json:"added_at"`
	RemovedAt     *time.Time `gorm:"column:removed_at;index" json:"removed_at,omitempty"`
}

func (BoardItem) TableName() string {
	return "board_item"
}
