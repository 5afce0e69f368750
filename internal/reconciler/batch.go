package reconciler

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"invoice-reconciliation-service/internal/recorder"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// FileResult is the outcome of processing one statement file in a batch.
type FileResult struct {
	File   string
	Report *recorder.RunReport
	Err    error
}

// BatchProcessor runs independent statement files concurrently on a worker
// pool. Files are independent by contract; invoice-level safety comes from
// the ledger's single-writer mutations, not from the pool.
type BatchProcessor struct {
	service *Service
	pool    *ants.Pool
	logger  logger.Logger
}

// NewBatchProcessor creates a batch processor with the given worker count.
func NewBatchProcessor(service *Service, workers int) (*BatchProcessor, error) {
	if service == nil {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "service", nil, nil)
	}
	if workers <= 0 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, apperrors.ReconciliationError(apperrors.CodeBatchRejected, "worker_pool_setup", err)
	}

	return &BatchProcessor{
		service: service,
		pool:    pool,
		logger:  logger.GetGlobalLogger().WithComponent("batch_processor"),
	}, nil
}

// ProcessFiles reconciles every file and collects per-file results in input
// order. A file that fails (malformed document, unreadable path) only fails
// its own result; the other files are unaffected.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, files []string) []FileResult {
	results := make([]FileResult, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		i, file := i, file
		wg.Add(1)

		err := b.pool.Submit(func() {
			defer wg.Done()
			report, err := b.service.ProcessFile(ctx, file)
			results[i] = FileResult{File: file, Report: report, Err: err}
		})
		if err != nil {
			wg.Done()
			b.logger.WithError(err).WithField("file", file).Error("Failed to submit file to worker pool")
			results[i] = FileResult{
				File: file,
				Err:  apperrors.ReconciliationError(apperrors.CodeBatchRejected, "worker_pool_submit", err),
			}
		}
	}
	wg.Wait()

	succeeded := 0
	for _, result := range results {
		if result.Err == nil {
			succeeded++
		}
	}
	b.logger.WithFields(logger.Fields{
		"files":     len(files),
		"succeeded": succeeded,
		"failed":    len(files) - succeeded,
	}).Info("Batch completed")

	return results
}

// Shutdown releases the worker pool.
func (b *BatchProcessor) Shutdown() {
	b.pool.Release()
}
