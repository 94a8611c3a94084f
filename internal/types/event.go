package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Event is one row of the audit spine. Rows are append-only: no update or
// delete path exists anywhere in the repo or service surface, and the struct
// deliberately carries no UpdatedAt or DeletedAt.
type Event struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ActorUserID uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_user_id"`
	ActorFirmID *uuid.UUID     `gorm:"type:uuid;index" json:"actor_firm_id,omitempty"`
	EventType   string         `gorm:"not null;index;column:event_type" json:"event_type"`
	ObjectType  string         `gorm:"not null;index;column:object_type" json:"object_type"`
	ObjectID    *uuid.UUID     `gorm:"type:uuid;index" json:"object_id,omitempty"`
	ItemID      *uuid.UUID     `gorm:"type:uuid;index" json:"item_id,omitempty"`
	BoardID     *uuid.UUID     `gorm:"type:uuid;index" json:"board_id,omitempty"`
	Payload     datatypes.JSON `gorm:"type:jsonb;column:payload" json:"payload,omitempty"`
	IP          string         `gorm:"type:varchar(45);column:ip" json:"ip,omitempty"`
	UserAgent   string         `gorm:"type:varchar(500);column:user_agent" json:"user_agent,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (Event) TableName() string {
	return "event"
}
