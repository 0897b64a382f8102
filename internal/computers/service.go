package computers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/comcol/comcol-backend/internal/pictures"
	"github.com/comcol/comcol-backend/pkg/db"
	"github.com/comcol/comcol-backend/pkg/db/models"
	pkgerrors "github.com/comcol/comcol-backend/pkg/errors"
	"github.com/comcol/comcol-backend/pkg/logger"
	"github.com/comcol/comcol-backend/pkg/pagination"
)

type computerRepository interface {
	Create(ctx context.Context, computer *models.Computer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Computer, error)
	List(ctx context.Context, search string, cursor *pagination.Cursor, limit int) ([]models.Computer, error)
	Update(ctx context.Context, computer *models.Computer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type pictureCleaner interface {
	RemoveAllForComputer(ctx context.Context, computerID uuid.UUID) error
}

// Service is the entry point for catalog entry reads and writes.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ComputerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ComputerDTO, error)
	List(ctx context.Context, input ListInput) (*ComputerPage, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ComputerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     computerRepository
	cleaner  pictureCleaner
	resolver *pictures.URLResolver
	logg     *logger.Logger
}

// NewService builds a computer service. The cleaner removes a computer's
// picture rows and files before the computer row goes away.
func NewService(repo computerRepository, cleaner pictureCleaner, resolver *pictures.URLResolver, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("computer repository required")
	}
	if cleaner == nil {
		return nil, fmt.Errorf("picture cleaner required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("url resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cleaner: cleaner, resolver: resolver, logg: logg}, nil
}

// CreateInput models a new catalog entry.
type CreateInput struct {
	Name        string  `json:"name" validate:"required"`
	Maker       *string `json:"maker"`
	Year        *int    `json:"year"`
	Description *string `json:"description"`
	SourceURL   *string `json:"source_url"`
}

// UpdateInput carries a partial update. Only non-nil fields change; an empty
// string clears an optional text field.
type UpdateInput struct {
	Name        *string `json:"name"`
	Maker       *string `json:"maker"`
	Year        *int    `json:"year"`
	Description *string `json:"description"`
	SourceURL   *string `json:"source_url"`
}

// ListInput carries catalog listing filters.
type ListInput struct {
	Search string
	Limit  int
	Cursor string
}

func validateYear(year *int) error {
	if year != nil && *year < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "year must not be negative")
	}
	return nil
}

func validateSourceURL(raw *string) error {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	parsed, err := url.ParseRequestURI(*raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return pkgerrors.New(pkgerrors.CodeValidation, "source_url must be an http or https URL")
	}
	return nil
}

// normalizeOptional maps empty strings to nil so cleared fields store as NULL.
func normalizeOptional(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ComputerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateYear(input.Year); err != nil {
		return nil, err
	}
	if err := validateSourceURL(input.SourceURL); err != nil {
		return nil, err
	}

	row := &models.Computer{
		Name:        name,
		Maker:       normalizeOptional(input.Maker),
		Year:        input.Year,
		Description: normalizeOptional(input.Description),
		SourceURL:   normalizeOptional(input.SourceURL),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating computer")
	}

	dto := NewComputerDTO(*row, s.resolver)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ComputerDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "computer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading computer")
	}
	dto := NewComputerDTO(*row, s.resolver)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ComputerPage, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	rows, err := s.repo.List(ctx, input.Search, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing computers")
	}

	page := &ComputerPage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	page.Computers = NewComputerDTOs(rows, s.resolver)
	return page, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ComputerDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "computer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading computer")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		row.Name = name
	}
	if input.Year != nil {
		if err := validateYear(input.Year); err != nil {
			return nil, err
		}
		row.Year = input.Year
	}
	if input.Maker != nil {
		row.Maker = normalizeOptional(input.Maker)
	}
	if input.Description != nil {
		row.Description = normalizeOptional(input.Description)
	}
	if input.SourceURL != nil {
		if err := validateSourceURL(input.SourceURL); err != nil {
			return nil, err
		}
		row.SourceURL = normalizeOptional(input.SourceURL)
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating computer")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading computer")
	}
	dto := NewComputerDTO(*updated, s.resolver)
	return &dto, nil
}

// Delete removes the computer's picture rows and files first, then the
// computer row itself.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "computer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading computer")
	}

	if err := s.cleaner.RemoveAllForComputer(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "removing pictures")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting computer")
	}
	return nil
}
