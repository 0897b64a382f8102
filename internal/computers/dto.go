package computers

import (
	"time"

	"github.com/google/uuid"

	"github.com/comcol/comcol-backend/internal/pictures"
	"github.com/comcol/comcol-backend/pkg/db/models"
)

// ComputerDTO is the API representation of a catalog entry. Pictures are
// included in gallery order.
type ComputerDTO struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Maker       *string                `json:"maker"`
	Year        *int                   `json:"year"`
	Description *string                `json:"description"`
	SourceURL   *string                `json:"source_url"`
	Pictures    []pictures.PictureDTO  `json:"images"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ComputerPage is one page of catalog listings.
type ComputerPage struct {
	Computers  []ComputerDTO `json:"computers"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// NewComputerDTO builds the representation for one computer row and its
// preloaded pictures.
func NewComputerDTO(row models.Computer, resolver *pictures.URLResolver) ComputerDTO {
	return ComputerDTO{
		ID:          row.ID,
		Name:        row.Name,
		Maker:       row.Maker,
		Year:        row.Year,
		Description: row.Description,
		SourceURL:   row.SourceURL,
		Pictures:    pictures.NewPictureDTOs(row.Pictures, resolver),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// NewComputerDTOs maps rows preserving their order.
func NewComputerDTOs(rows []models.Computer, resolver *pictures.URLResolver) []ComputerDTO {
	out := make([]ComputerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewComputerDTO(row, resolver))
	}
	return out
}
