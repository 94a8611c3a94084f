package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item dimensions are stored in canonical centimeters; CBM is derived once
// at write time from the normalized dimensions.
type Item struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Owner       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerUserID;references:ID" json:"owner,omitempty"`
	RoomID      *uuid.UUID     `gorm:"type:uuid;index" json:"room_id,omitempty"`
	Room        *Room          `gorm:"constraint:OnDelete:SET NULL;foreignKey:RoomID;references:ID" json:"room,omitempty"`
	Name        string         `gorm:"type:varchar(255);not null;column:name" json:"name"`
	WidthCm     float64        `gorm:"column:width_cm" json:"width_cm"`
	HeightCm    float64        `gorm:"column:height_cm" json:"height_cm"`
	DepthCm     float64        `gorm:"column:depth_cm" json:"depth_cm"`
	CBM         float64        `gorm:"column:cbm" json:"cbm"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Item) TableName() string {
	return "item"
}
