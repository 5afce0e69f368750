// Package recorder applies classified match results to the invoice ledger
// and accumulates the run report returned to the caller.
package recorder

import (
	"context"
	"fmt"

	"invoice-reconciliation-service/internal/ledger"
	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/pkg/logger"
)

// UnmatchedEntry is one bank entry that did not produce a clean match,
// surfaced with its reason for human triage.
type UnmatchedEntry struct {
	Entry              *models.BankEntry `json:"entry"`
	CandidateReference string            `json:"candidate_reference,omitempty"`
	Reason             matcher.Reason    `json:"reason"`
}

// RunReport is the outcome of reconciling one statement: the references that
// were settled and every entry that needs manual review.
type RunReport struct {
	Matched   []string         `json:"matched"`
	Unmatched []UnmatchedEntry `json:"unmatched"`
	// EntriesSkipped counts statement entries the parser dropped (for
	// example a non-numeric amount); they never reached matching.
	EntriesSkipped int `json:"entries_skipped,omitempty"`
}

// NewRunReport creates an empty run report.
func NewRunReport() *RunReport {
	return &RunReport{
		Matched:   []string{},
		Unmatched: []UnmatchedEntry{},
	}
}

// Record files a match result into the report.
func (r *RunReport) Record(result *matcher.MatchResult) {
	if result.IsClean() {
		r.Matched = append(r.Matched, result.Invoice.ReferenceNumber)
		return
	}

	r.Unmatched = append(r.Unmatched, UnmatchedEntry{
		Entry:              result.Entry,
		CandidateReference: result.CandidateReference,
		Reason:             result.Reason,
	})
}

// Recorder applies matched results to the invoice ledger.
type Recorder struct {
	ledger ledger.InvoiceLedger
	logger logger.Logger
}

// NewRecorder creates a recorder over the given ledger.
func NewRecorder(invoiceLedger ledger.InvoiceLedger) *Recorder {
	return &Recorder{
		ledger: invoiceLedger,
		logger: logger.GetGlobalLogger().WithComponent("payment_recorder"),
	}
}

// Apply writes a classified result to the ledger.
//
// A matched result transitions the invoice to paid (if it is not already)
// and always appends a payment log entry, even when the invoice was paid
// before. Replaying the same statement therefore appends duplicate log rows
// without erroring; the log is an audit trail of received payments, not a
// deduplicated record. Mismatches and unmatched entries leave the ledger
// untouched.
func (r *Recorder) Apply(ctx context.Context, result *matcher.MatchResult) error {
	if result.Outcome != matcher.OutcomeMatched {
		return nil
	}

	invoice := result.Invoice
	entry := result.Entry

	if !invoice.IsPaid() {
		bookingDate := models.DateOnly(entry.BookingDate)
		invoice.Status = models.StatusPaid
		invoice.LastReminderDate = &bookingDate

		if err := r.ledger.Save(ctx, invoice); err != nil {
			return err
		}

		r.logger.WithFields(logger.Fields{
			"reference": invoice.ReferenceNumber,
			"amount":    entry.Amount.String(),
		}).Info("Invoice marked as paid")
	} else {
		r.logger.WithField("reference", invoice.ReferenceNumber).
			Info("Invoice was already paid, recording payment anyway")
	}

	logEntry := models.NewPaymentLogEntry(
		invoice.ReferenceNumber,
		entry.Amount,
		models.DateOnly(entry.BookingDate),
		fmt.Sprintf("payment received on %s", entry.BookingDate.Format("2006-01-02")),
	)

	return r.ledger.AppendPaymentLog(ctx, logEntry)
}
