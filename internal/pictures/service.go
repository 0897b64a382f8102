package pictures

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comcol/comcol-backend/internal/imageproc"
	"github.com/comcol/comcol-backend/pkg/db"
	"github.com/comcol/comcol-backend/pkg/db/models"
	pkgerrors "github.com/comcol/comcol-backend/pkg/errors"
	"github.com/comcol/comcol-backend/pkg/logger"
	"github.com/comcol/comcol-backend/pkg/metrics"
)

type pictureRepository interface {
	ComputerExists(ctx context.Context, computerID uuid.UUID) (bool, error)
	NextPosition(ctx context.Context, tx *gorm.DB, computerID uuid.UUID) (int, error)
	Create(ctx context.Context, tx *gorm.DB, picture *models.Picture) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Picture, error)
	ListByComputer(ctx context.Context, computerID uuid.UUID) ([]models.Picture, error)
	UpdatePosition(ctx context.Context, tx *gorm.DB, id uuid.UUID, position int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByComputer(ctx context.Context, computerID uuid.UUID) error
}

type blobStore interface {
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the single entry point for attaching, reading, reordering and
// removing pictures of a computer.
type Service interface {
	Ingest(ctx context.Context, input IngestInput) (*PictureDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PictureDTO, error)
	ListByComputer(ctx context.Context, computerID uuid.UUID) ([]PictureDTO, error)
	Reorder(ctx context.Context, computerID uuid.UUID, orderedIDs []uuid.UUID) ([]PictureDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RemoveAllForComputer(ctx context.Context, computerID uuid.UUID) error
}

type service struct {
	repo     pictureRepository
	blobs    blobStore
	tx       txRunner
	resolver *URLResolver
	policy   imageproc.Policy
	logg     *logger.Logger
	metrics  *metrics.IngestMetrics
	locks    parentLocks
}

// NewService builds a picture service backed by the provided repository, blob
// store and transaction runner.
func NewService(repo pictureRepository, blobs blobStore, tx txRunner, resolver *URLResolver, policy imageproc.Policy, logg *logger.Logger, ingestMetrics *metrics.IngestMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("picture repository required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("url resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(policy.Variants) == 0 {
		return nil, fmt.Errorf("derived-size policy requires at least one variant")
	}
	return &service{
		repo:     repo,
		blobs:    blobs,
		tx:       tx,
		resolver: resolver,
		policy:   policy,
		logg:     logg,
		metrics:  ingestMetrics,
	}, nil
}

// IngestInput models one uploaded picture.
type IngestInput struct {
	ComputerID  uuid.UUID
	Data        []byte
	ContentType string
}

// Ingest runs the full pipeline: parent lookup, format normalization, blob
// writes, row insert with position assignment, derived-size generation. Any
// failure past the first write compensates by deleting what was already
// persisted, so a failed upload leaves no state behind.
func (s *service) Ingest(ctx context.Context, input IngestInput) (*PictureDTO, error) {
	start := time.Now()
	sourceFormat := "standard"
	if imageproc.IsCameraNative(input.ContentType) {
		sourceFormat = "heic"
	}

	if input.ComputerID == uuid.Nil {
		s.metrics.IncFailure("validate")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "computer id is required")
	}
	if len(input.Data) == 0 {
		s.metrics.IncFailure("validate")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image payload is empty")
	}

	exists, err := s.repo.ComputerExists(ctx, input.ComputerID)
	if err != nil {
		s.metrics.IncFailure("parent_lookup")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up computer")
	}
	if !exists {
		s.metrics.IncFailure("parent_lookup")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "computer not found")
	}

	normalized, err := imageproc.Normalize(input.Data, input.ContentType, s.policy.JPEGQuality)
	if err != nil {
		s.metrics.IncFailure("normalize")
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnprocessable, err, "normalizing upload")
	}

	fileKey := NewFileKey()
	collectionDir := s.resolver.CollectionDir()
	originalKey := OriginalKey(collectionDir, fileKey, DefaultExtension)

	if err := s.blobs.Write(ctx, originalKey, normalized); err != nil {
		s.metrics.IncFailure("store_original")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing original")
	}
	written := []string{originalKey}

	row := &models.Picture{
		ComputerID: input.ComputerID,
		FileKey:    fileKey,
		Extension:  DefaultExtension,
	}

	unlock := s.locks.lock(input.ComputerID)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		position, err := s.repo.NextPosition(ctx, tx, input.ComputerID)
		if err != nil {
			return fmt.Errorf("computing next position: %w", err)
		}
		row.Position = position
		return s.repo.Create(ctx, tx, row)
	})
	unlock()
	if err != nil {
		s.compensate(ctx, uuid.Nil, written)
		s.metrics.IncFailure("persist")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting picture")
	}

	variants, err := imageproc.DeriveVariants(normalized, s.policy)
	if err != nil {
		s.compensate(ctx, row.ID, written)
		s.metrics.IncFailure("derive")
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnprocessable, err, "deriving image sizes")
	}

	for _, variant := range s.policy.Variants {
		key := VariantKey(collectionDir, fileKey, variant.Suffix, DefaultExtension)
		if err := s.blobs.Write(ctx, key, variants[variant.Suffix]); err != nil {
			s.compensate(ctx, row.ID, written)
			s.metrics.IncFailure("store_variants")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing derived sizes")
		}
		written = append(written, key)
	}

	s.metrics.IncSuccess()
	s.metrics.ObserveDuration(sourceFormat, time.Since(start))

	dto := NewPictureDTO(*row, s.resolver)
	return &dto, nil
}

// compensate undoes partial ingestion state: the row (when already inserted)
// and every blob written so far. Failures here are logged, not surfaced; the
// sweeper reclaims anything left behind.
func (s *service) compensate(ctx context.Context, rowID uuid.UUID, writtenKeys []string) {
	if rowID != uuid.Nil {
		if err := s.repo.Delete(ctx, rowID); err != nil {
			s.logg.Error(ctx, "ingest.compensate.row", err)
		}
	}
	for _, key := range writtenKeys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "blob_key", key), "ingest.compensate.blob")
		}
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PictureDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "picture not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading picture")
	}
	dto := NewPictureDTO(*row, s.resolver)
	return &dto, nil
}

func (s *service) ListByComputer(ctx context.Context, computerID uuid.UUID) ([]PictureDTO, error) {
	rows, err := s.repo.ListByComputer(ctx, computerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing pictures")
	}
	return NewPictureDTOs(rows, s.resolver), nil
}

// Reorder assigns each listed picture its index in the supplied sequence.
// Ids that do not belong to the parent are silently skipped. Pictures omitted
// from the list keep their previous relative order after the listed ones, so
// the final sequence is always dense 0..n-1.
func (s *service) Reorder(ctx context.Context, computerID uuid.UUID, orderedIDs []uuid.UUID) ([]PictureDTO, error) {
	exists, err := s.repo.ComputerExists(ctx, computerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up computer")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "computer not found")
	}

	unlock := s.locks.lock(computerID)
	defer unlock()

	rows, err := s.repo.ListByComputer(ctx, computerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing pictures")
	}

	byID := make(map[uuid.UUID]int, len(rows))
	for i, row := range rows {
		byID[row.ID] = i
	}

	assigned := make(map[uuid.UUID]int, len(rows))
	next := 0
	for _, id := range orderedIDs {
		if _, ok := byID[id]; !ok {
			continue
		}
		if _, done := assigned[id]; done {
			continue
		}
		assigned[id] = next
		next++
	}
	for _, row := range rows {
		if _, done := assigned[row.ID]; !done {
			assigned[row.ID] = next
			next++
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for i := range rows {
			position := assigned[rows[i].ID]
			if position == rows[i].Position {
				continue
			}
			if err := s.repo.UpdatePosition(ctx, tx, rows[i].ID, position); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reordering pictures")
	}

	for i := range rows {
		rows[i].Position = assigned[rows[i].ID]
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return NewPictureDTOs(rows, s.resolver), nil
}

// Delete removes the picture row, then best-effort removes its original and
// derived blobs. The record store is authoritative: blob removal failures are
// logged and left for the sweeper.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "picture not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading picture")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting picture")
	}

	s.removeBlobs(ctx, row.FileKey, row.Extension)
	return nil
}

// RemoveAllForComputer deletes every picture row and file of the parent.
// Called by the computer cascade before the parent row goes away.
func (s *service) RemoveAllForComputer(ctx context.Context, computerID uuid.UUID) error {
	rows, err := s.repo.ListByComputer(ctx, computerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing pictures")
	}

	if err := s.repo.DeleteByComputer(ctx, computerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting pictures")
	}

	for _, row := range rows {
		s.removeBlobs(ctx, row.FileKey, row.Extension)
	}
	return nil
}

func (s *service) removeBlobs(ctx context.Context, fileKey, extension string) {
	for _, key := range BlobKeys(s.resolver.CollectionDir(), fileKey, extension) {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "blob_key", key), "picture.delete.orphan")
		}
	}
}
