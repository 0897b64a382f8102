package models

import (
	"time"

	"github.com/google/uuid"
)

// Computer is a single collectible catalog entry.
type Computer struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Maker       *string   `gorm:"column:maker"`
	Year        *int      `gorm:"column:year"`
	Description *string   `gorm:"column:description"`
	SourceURL   *string   `gorm:"column:source_url"`
	Pictures    []Picture `gorm:"foreignKey:ComputerID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
