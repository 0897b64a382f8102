package pictures

import (
	"time"

	"github.com/google/uuid"

	"github.com/comcol/comcol-backend/pkg/db/models"
)

// PictureDTO is the API representation of a stored picture.
type PictureDTO struct {
	ID         uuid.UUID `json:"id"`
	ComputerID uuid.UUID `json:"computer"`
	Position   int       `json:"order"`
	Image      string    `json:"image"`
	Thumb      string    `json:"thumb"`
	Gallery    string    `json:"gallery"`
	Portrait   string    `json:"portrait"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPictureDTO builds the representation for one picture row.
func NewPictureDTO(row models.Picture, resolver *URLResolver) PictureDTO {
	urls := resolver.Resolve(row.FileKey, row.Extension)
	return PictureDTO{
		ID:         row.ID,
		ComputerID: row.ComputerID,
		Position:   row.Position,
		Image:      urls.Image,
		Thumb:      urls.Thumb,
		Gallery:    urls.Gallery,
		Portrait:   urls.Portrait,
		CreatedAt:  row.CreatedAt,
	}
}

// NewPictureDTOs maps rows preserving their order.
func NewPictureDTOs(rows []models.Picture, resolver *URLResolver) []PictureDTO {
	out := make([]PictureDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewPictureDTO(row, resolver))
	}
	return out
}
