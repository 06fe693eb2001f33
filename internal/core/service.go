package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/memberdesk/internal/logging"
	"github.com/JonMunkholm/memberdesk/internal/pdfdoc"
)

// ErrUnknownDataset is returned for a dataset key that was never registered.
var ErrUnknownDataset = errors.New("unknown dataset")

// DefaultImportTimeout bounds a single import, including the database write.
const DefaultImportTimeout = 2 * time.Minute

// DefaultPreviewSamples is how many sample rows a preview returns per kind.
const DefaultPreviewSamples = 5

// Options configures a Service. Zero values fall back to the defaults.
type Options struct {
	MaxFileSize    int64
	MaxConcurrent  int
	MaxWaitTime    time.Duration
	ImportTimeout  time.Duration
	PreviewSamples int

	// Assembler renders documents and reports. Nil means pdfdoc.New().
	Assembler *pdfdoc.Assembler
}

// Service provides the import, export and report operations.
// It is safe for concurrent use.
type Service struct {
	store     Store
	limiter   *ImportLimiter
	assembler *pdfdoc.Assembler
	opts      Options

	now func() time.Time
}

// NewService creates a Service backed by store.
func NewService(store Store, opts Options) *Service {
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = DefaultImportTimeout
	}
	if opts.PreviewSamples <= 0 {
		opts.PreviewSamples = DefaultPreviewSamples
	}
	asm := opts.Assembler
	if asm == nil {
		asm = pdfdoc.New()
	}

	return &Service{
		store:     store,
		limiter:   NewImportLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
		assembler: asm,
		opts:      opts,
		now:       time.Now,
	}
}

// ListDatasets returns information about all registered datasets.
func (s *Service) ListDatasets() []DatasetInfo {
	all := All()
	infos := make([]DatasetInfo, len(all))
	for i, ds := range all {
		infos[i] = ds.Info
	}
	return infos
}

// Dataset looks up a registered dataset by key.
func (s *Service) Dataset(key string) (Dataset, error) {
	ds, ok := Get(key)
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %s", ErrUnknownDataset, key)
	}
	return ds, nil
}

// ImportLimiterStatus returns the current import slot usage.
func (s *Service) ImportLimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
// Used during graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// DatasetStats summarizes one dataset for the dashboard.
type DatasetStats struct {
	Info       DatasetInfo `json:"info"`
	RowCount   int64       `json:"row_count"`
	LastImport *ImportRun  `json:"last_import,omitempty"`
}

// Stats returns row counts and the latest import of every dataset. A
// dataset whose stats cannot be read is still listed, with zero values.
func (s *Service) Stats(ctx context.Context) []DatasetStats {
	all := All()
	stats := make([]DatasetStats, len(all))
	for i, ds := range all {
		stats[i].Info = ds.Info

		if n, err := s.store.Count(ctx, ds); err == nil {
			stats[i].RowCount = n
		} else {
			logging.FromContext(ctx).Warn("count rows", "dataset", ds.Info.Key, "error", err)
		}
		if runs, err := s.store.ListImports(ctx, ds.Info.Key, 1); err == nil && len(runs) > 0 {
			stats[i].LastImport = &runs[0]
		}
	}
	return stats
}
