package models

import (
	"time"

	"github.com/google/uuid"
)

// Picture is one photograph attached to a computer. FileKey names the original
// blob and all derived variants; it is assigned once at ingestion and never
// changes. Position is the zero-based slot within the parent's picture list.
type Picture struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ComputerID uuid.UUID `gorm:"column:computer_id;type:uuid;not null;index"`
	FileKey    string    `gorm:"column:file_key;not null;uniqueIndex;size:32"`
	Extension  string    `gorm:"column:extension;not null"`
	Position   int       `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
