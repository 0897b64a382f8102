// Package sweep removes media files that no picture row references anymore.
// Failed ingestion compensation and best-effort delete cleanup can both leave
// stray files behind; a periodic sweep reclaims them.
package sweep

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/comcol/comcol-backend/pkg/logger"
	"github.com/comcol/comcol-backend/pkg/metrics"
)

type blobLister interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

type keySource interface {
	FileKeys(ctx context.Context) ([]string, error)
}

// fileKeyRe extracts the leading 128-bit hex key from a blob file name,
// with or without a variant suffix.
var fileKeyRe = regexp.MustCompile(`^([0-9a-f]{32})(-[a-z0-9]+)?\.[a-z0-9]+$`)

// Result summarizes one sweep run.
type Result struct {
	Scanned int
	Removed int
	Failed  int
	Kept    int
}

// Sweeper scans the picture collection directory and deletes files whose key
// is absent from the database.
type Sweeper struct {
	blobs         blobLister
	keys          keySource
	collectionDir string
	dryRun        bool
	logg          *logger.Logger
	metrics       *metrics.SweepMetrics
}

// NewSweeper builds a sweeper over the given collection directory. With
// dryRun set it only reports what would be removed.
func NewSweeper(blobs blobLister, keys keySource, collectionDir string, dryRun bool, logg *logger.Logger, sweepMetrics *metrics.SweepMetrics) (*Sweeper, error) {
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if keys == nil {
		return nil, fmt.Errorf("key source required")
	}
	if strings.TrimSpace(collectionDir) == "" {
		return nil, fmt.Errorf("collection directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Sweeper{
		blobs:         blobs,
		keys:          keys,
		collectionDir: collectionDir,
		dryRun:        dryRun,
		logg:          logg,
		metrics:       sweepMetrics,
	}, nil
}

// Run performs one sweep pass. Unparseable file names are kept, never
// deleted: only files that follow the generated naming scheme and lack a
// matching row are orphans.
func (s *Sweeper) Run(ctx context.Context) (*Result, error) {
	referenced, err := s.keys.FileKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading referenced keys: %w", err)
	}
	live := make(map[string]struct{}, len(referenced))
	for _, key := range referenced {
		live[key] = struct{}{}
	}

	blobKeys, err := s.blobs.List(ctx, s.collectionDir)
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}

	result := &Result{Scanned: len(blobKeys)}
	for _, blobKey := range blobKeys {
		match := fileKeyRe.FindStringSubmatch(path.Base(blobKey))
		if match == nil {
			result.Kept++
			continue
		}
		if _, ok := live[match[1]]; ok {
			result.Kept++
			continue
		}

		if s.dryRun {
			s.logg.Info(s.logg.WithField(ctx, "blob_key", blobKey), "sweep.would_remove")
			result.Removed++
			continue
		}
		if err := s.blobs.Delete(ctx, blobKey); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "blob_key", blobKey), "sweep.remove_failed", err)
			s.metrics.IncFailed()
			result.Failed++
			continue
		}
		s.logg.Info(s.logg.WithField(ctx, "blob_key", blobKey), "sweep.removed")
		s.metrics.IncRemoved()
		result.Removed++
	}
	return result, nil
}
