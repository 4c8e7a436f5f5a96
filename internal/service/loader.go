package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/docvec/docvec/internal/domain"
)

// DefaultBatchSize is the number of chunks sent per writer call when no
// batch size is configured.
const DefaultBatchSize = 100

// StoreWriter is the slice of the vector store the batch loader drives.
// UpsertBatch must be idempotent: re-writing a chunk id overwrites it.
type StoreWriter interface {
	UpsertBatch(ctx context.Context, collection string, chunks []domain.Chunk) error
	DeleteCollectionIfExists(ctx context.Context, collection string) error
}

// ProgressFunc observes ingestion progress as (processed, total) after
// each successful batch. It is a side channel, not a correctness hook.
type ProgressFunc func(processed, total int)

// LoaderConfig configures one ingestion run.
type LoaderConfig struct {
	Collection string
	BatchSize  int  // 0 means DefaultBatchSize
	Reset      bool // delete the collection before the first batch
	BestEffort bool // continue past failed batches instead of aborting
	OnProgress ProgressFunc
}

// BatchFailure records one failed writer call by its chunk index range.
type BatchFailure struct {
	Start int // inclusive
	End   int // exclusive
	Err   error
}

func (f BatchFailure) Error() string {
	return fmt.Sprintf("batch [%d:%d): %v", f.Start, f.End, f.Err)
}

func (f BatchFailure) Unwrap() error {
	return f.Err
}

// LoadResult summarizes an ingestion run. In best-effort mode Failures
// lists every batch that did not apply; their ranges make manual
// resumption possible.
type LoadResult struct {
	Total    int
	Loaded   int
	Batches  int
	Failures []BatchFailure
}

// BatchLoader partitions enriched chunks into contiguous batches and
// drives them through a store writer, strictly in order. No two batches
// are ever in flight at once.
type BatchLoader struct {
	writer StoreWriter
	cfg    LoaderConfig
}

// NewBatchLoader creates a new BatchLoader instance. The configuration
// is validated up front so a bad batch size fails before any store call.
func NewBatchLoader(writer StoreWriter, cfg LoaderConfig) (*BatchLoader, error) {
	if writer == nil {
		return nil, domain.Validationf("store writer is required")
	}
	if strings.TrimSpace(cfg.Collection) == "" {
		return nil, domain.Validationf("collection name is required")
	}
	if cfg.BatchSize < 0 {
		return nil, domain.ErrInvalidBatchSize
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &BatchLoader{writer: writer, cfg: cfg}, nil
}

// Load ingests chunks into the configured collection. When the reset
// flag is set the collection is deleted exactly once, before the first
// batch, even when there are no chunks to load.
//
// The default policy is fail-fast: the first failed batch aborts the
// run and its index range is reported with the cause. In best-effort
// mode remaining batches still run and all failed ranges accumulate in
// the result; the returned error then summarizes them.
func (l *BatchLoader) Load(ctx context.Context, chunks []domain.Chunk) (*LoadResult, error) {
	result := &LoadResult{Total: len(chunks)}

	if l.cfg.Reset {
		if err := l.writer.DeleteCollectionIfExists(ctx, l.cfg.Collection); err != nil {
			return result, domain.Backendf(err, "failed to reset collection %q", l.cfg.Collection)
		}
	}

	size := l.cfg.BatchSize
	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}

		if err := l.writer.UpsertBatch(ctx, l.cfg.Collection, chunks[start:end]); err != nil {
			failure := BatchFailure{Start: start, End: end, Err: err}
			result.Failures = append(result.Failures, failure)
			if !l.cfg.BestEffort {
				return result, domain.Backendf(failure, "ingestion aborted at chunks [%d:%d)", start, end)
			}
			continue
		}

		result.Loaded += end - start
		result.Batches++
		if l.cfg.OnProgress != nil {
			l.cfg.OnProgress(result.Loaded, result.Total)
		}
	}

	if len(result.Failures) > 0 {
		return result, domain.Backendf(nil, "%d of %d batches failed: %s",
			len(result.Failures), result.Batches+len(result.Failures), failureRanges(result.Failures))
	}
	return result, nil
}

func failureRanges(failures []BatchFailure) string {
	ranges := make([]string, len(failures))
	for i, f := range failures {
		ranges[i] = fmt.Sprintf("[%d:%d)", f.Start, f.End)
	}
	return strings.Join(ranges, ", ")
}
