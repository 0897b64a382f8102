package computers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comcol/comcol-backend/pkg/db/models"
	"github.com/comcol/comcol-backend/pkg/pagination"
)

// Repository wraps GORM operations for computer rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a computer repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func orderedPictures(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, created_at ASC")
}

// Create inserts a computer row, assigning an id when absent.
func (r *Repository) Create(ctx context.Context, computer *models.Computer) error {
	if computer.ID == uuid.Nil {
		computer.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(computer).Error
}

// FindByID retrieves a computer with its pictures in gallery order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Computer, error) {
	var row models.Computer
	err := r.db.WithContext(ctx).
		Preload("Pictures", orderedPictures).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns newest-first computers, optionally filtered by a name or maker
// substring, starting after the cursor. Pictures are preloaded in gallery
// order. Callers pass limit+1 to detect a next page.
func (r *Repository) List(ctx context.Context, search string, cursor *pagination.Cursor, limit int) ([]models.Computer, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Computer{}).
		Preload("Pictures", orderedPictures).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if term := strings.TrimSpace(search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(maker, '')) LIKE ?", pattern, pattern)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Computer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the provided fields of an existing row.
func (r *Repository) Update(ctx context.Context, computer *models.Computer) error {
	return r.db.WithContext(ctx).
		Model(&models.Computer{}).
		Where("id = ?", computer.ID).
		Updates(map[string]any{
			"name":        computer.Name,
			"maker":       computer.Maker,
			"year":        computer.Year,
			"description": computer.Description,
			"source_url":  computer.SourceURL,
		}).Error
}

// Delete removes a computer row. Picture rows cascade at the database level;
// callers remove picture files first.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Computer{}).Error
}
