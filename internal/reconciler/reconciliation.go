// Package reconciler orchestrates a reconciliation run: statement parsing,
// reference extraction, matching against the invoice ledger, and payment
// recording.
//
// One run is sequential over the entries of one statement. Entry order does
// not affect correctness (matching is keyed by reference, not position), and
// each entry's ledger mutation commits as it is processed, so a run that
// fails midway leaves the already-processed entries applied. Independent
// statement files may be processed concurrently; see BatchProcessor.
package reconciler

import (
	"context"

	"invoice-reconciliation-service/internal/extractor"
	"invoice-reconciliation-service/internal/ledger"
	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/recorder"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// Service reconciles bank statements against the invoice ledger.
type Service struct {
	parser    *parsers.StatementParser
	extractor *extractor.ReferenceExtractor
	matcher   *matcher.Matcher
	recorder  *recorder.Recorder
	logger    logger.Logger
}

// NewService wires a reconciliation service over the given ledger. A nil
// parser configuration selects the camt.053.001.02 defaults.
func NewService(invoiceLedger ledger.InvoiceLedger, parserConfig *parsers.Config) (*Service, error) {
	if invoiceLedger == nil {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "invoice_ledger", nil, nil).
			WithSuggestion("provide an InvoiceLedger implementation")
	}

	parser, err := parsers.NewStatementParser(parserConfig)
	if err != nil {
		return nil, err
	}

	return &Service{
		parser:    parser,
		extractor: extractor.NewReferenceExtractor(),
		matcher:   matcher.NewMatcher(invoiceLedger),
		recorder:  recorder.NewRecorder(invoiceLedger),
		logger:    logger.GetGlobalLogger().WithComponent("reconciliation_service"),
	}, nil
}

// ProcessFile reconciles one statement file from disk.
func (s *Service) ProcessFile(ctx context.Context, path string) (*recorder.RunReport, error) {
	entries, stats, err := s.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return s.reconcileEntries(ctx, entries, stats, path)
}

// ProcessStatement reconciles one statement document delivered as bytes. The
// name argument only labels errors and log lines.
func (s *Service) ProcessStatement(ctx context.Context, data []byte, name string) (*recorder.RunReport, error) {
	entries, stats, err := s.parser.Parse(data, name)
	if err != nil {
		return nil, err
	}
	return s.reconcileEntries(ctx, entries, stats, name)
}

func (s *Service) reconcileEntries(ctx context.Context, entries []*models.BankEntry, stats *parsers.ParseStats, name string) (*recorder.RunReport, error) {
	report := recorder.NewRunReport()
	report.EntriesSkipped = stats.EntriesSkipped

	for _, entry := range entries {
		// Debit entries are outgoing payments; they are never offered to
		// reference extraction or matching.
		if !entry.IsCredit() {
			s.logger.WithField("amount", entry.Amount.String()).Debug("Skipping debit entry")
			continue
		}

		candidate, found := s.extractor.Extract(entry.RemittanceText)

		result, err := s.matcher.Classify(ctx, entry, candidate, found)
		if err != nil {
			return report, apperrors.ReconciliationError(apperrors.CodeProcessingFailed, "entry_classification", err).
				WithContext("file", name)
		}

		if err := s.recorder.Apply(ctx, result); err != nil {
			return report, apperrors.ReconciliationError(apperrors.CodeProcessingFailed, "payment_recording", err).
				WithContext("file", name).
				WithContext("reference", result.CandidateReference)
		}

		report.Record(result)
	}

	s.logger.WithFields(logger.Fields{
		"file":      name,
		"matched":   len(report.Matched),
		"unmatched": len(report.Unmatched),
		"skipped":   report.EntriesSkipped,
	}).Info("Statement reconciled")

	return report, nil
}
