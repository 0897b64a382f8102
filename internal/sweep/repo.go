package sweep

import (
	"context"

	"gorm.io/gorm"

	"github.com/comcol/comcol-backend/pkg/db/models"
)

// Repository reads the set of file keys referenced by picture rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a sweep repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FileKeys returns every file key present in the pictures table.
func (r *Repository) FileKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.Picture{}).
		Pluck("file_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
