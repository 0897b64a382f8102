package pictures

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comcol/comcol-backend/pkg/db/models"
)

// Repository wraps GORM operations for picture rows. Methods taking a tx run
// inside the caller's transaction; the rest use the bound connection.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a picture repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ComputerExists reports whether the parent row is present.
func (r *Repository) ComputerExists(ctx context.Context, computerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Computer{}).
		Where("id = ?", computerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextPosition computes max(position)+1 among the parent's pictures, or 0 when
// the parent has none. Callers must hold the per-parent ingest lock.
func (r *Repository) NextPosition(ctx context.Context, tx *gorm.DB, computerID uuid.UUID) (int, error) {
	var next int
	err := tx.WithContext(ctx).
		Model(&models.Picture{}).
		Where("computer_id = ?", computerID).
		Select("COALESCE(MAX(position), -1) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Create inserts a picture row inside the provided transaction.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, picture *models.Picture) error {
	if picture.ID == uuid.Nil {
		picture.ID = uuid.New()
	}
	return tx.WithContext(ctx).Create(picture).Error
}

// FindByID retrieves a picture row by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Picture, error) {
	var row models.Picture
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByComputer returns the parent's pictures ordered by position.
func (r *Repository) ListByComputer(ctx context.Context, computerID uuid.UUID) ([]models.Picture, error) {
	var rows []models.Picture
	err := r.db.WithContext(ctx).
		Where("computer_id = ?", computerID).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdatePosition moves one picture to the given slot inside the transaction.
func (r *Repository) UpdatePosition(ctx context.Context, tx *gorm.DB, id uuid.UUID, position int) error {
	return tx.WithContext(ctx).
		Model(&models.Picture{}).
		Where("id = ?", id).
		Update("position", position).Error
}

// Delete removes a picture row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Picture{}).Error
}

// DeleteByComputer removes every picture row of the parent.
func (r *Repository) DeleteByComputer(ctx context.Context, computerID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("computer_id = ?", computerID).Delete(&models.Picture{}).Error
}
