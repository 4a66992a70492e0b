package activity

import (
	"time"

	"github.com/google/uuid"
)

// Log is one persisted activity. ID is the event id, which makes
// redelivered events a no-op.
type Log struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_activity_logs_entity"`
	ActorID     uuid.UUID `gorm:"type:uuid;not null"`
	Action      string    `gorm:"type:varchar(30);not null"`
	EntityType  string    `gorm:"type:varchar(30);not null;index:idx_activity_logs_entity"`
	EntityID    uuid.UUID `gorm:"type:uuid;not null;index:idx_activity_logs_entity"`
	Description string    `gorm:"type:text"`
	RequestID   string    `gorm:"type:varchar(64)"`
	OccurredAt  time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

func (Log) TableName() string { return "activity_logs" }
