// Package matcher classifies parsed bank entries against open invoices.
//
// Classification is a pure decision over ledger reads: the matcher never
// mutates the ledger. Applying a result is the payment recorder's job.
package matcher

import (
	"context"

	"invoice-reconciliation-service/internal/ledger"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/pkg/logger"
)

// Outcome is the classification of one bank entry.
//
// OutcomeAmbiguous is part of the contract for implementations that extend
// reference matching to fuzzy or multi-candidate search. The exact unique-key
// lookup used here never emits it.
type Outcome string

const (
	// OutcomeMatched means exactly one invoice matched with an equal amount.
	OutcomeMatched Outcome = "matched"
	// OutcomeAmountMismatch means the reference matched an invoice but the
	// amounts differ. Reported for manual review, never auto-applied.
	OutcomeAmountMismatch Outcome = "amount_mismatch"
	// OutcomeAmbiguous means multiple invoices are plausible candidates.
	OutcomeAmbiguous Outcome = "ambiguous"
	// OutcomeUnmatched means no invoice could be associated with the entry.
	OutcomeUnmatched Outcome = "unmatched"
)

// Reason explains a non-matched classification in run reports.
type Reason string

const (
	ReasonNoCandidateReference Reason = "no-candidate-reference"
	ReasonReferenceNotFound    Reason = "reference-not-found"
	ReasonAmountMismatch       Reason = "amount-mismatch"
)

// MatchResult is the transient classification of one bank entry. It is
// consumed immediately by the payment recorder or surfaced in the run report;
// it is never persisted.
type MatchResult struct {
	Entry              *models.BankEntry
	CandidateReference string
	Outcome            Outcome
	// Invoice is set for matched and amount_mismatch outcomes.
	Invoice *models.Invoice
	// Candidates is reserved for the ambiguous outcome.
	Candidates []*models.Invoice
	// Reason is set for every outcome other than matched.
	Reason Reason
}

// IsClean reports whether the entry can be applied to the ledger as-is.
func (r *MatchResult) IsClean() bool {
	return r.Outcome == OutcomeMatched
}

// Matcher classifies bank entries against the invoice ledger.
type Matcher struct {
	ledger ledger.InvoiceLedger
	logger logger.Logger
}

// NewMatcher creates a matcher over the given ledger.
func NewMatcher(invoiceLedger ledger.InvoiceLedger) *Matcher {
	return &Matcher{
		ledger: invoiceLedger,
		logger: logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// Classify produces the MatchResult for one bank entry and its extracted
// candidate reference. hasCandidate is false when the extractor found no
// reference shape in the remittance text.
//
// The returned error is reserved for ledger failures; every business-level
// negative result is expressed through the outcome and reason fields.
func (m *Matcher) Classify(ctx context.Context, entry *models.BankEntry, candidate string, hasCandidate bool) (*MatchResult, error) {
	result := &MatchResult{
		Entry:              entry,
		CandidateReference: candidate,
	}

	if !hasCandidate {
		result.Outcome = OutcomeUnmatched
		result.Reason = ReasonNoCandidateReference
		m.logger.WithField("remittance_text", entry.RemittanceText).
			Debug("No candidate reference in remittance text")
		return result, nil
	}

	invoice, err := m.ledger.FindByReference(ctx, candidate)
	if err != nil {
		return nil, err
	}

	if invoice == nil {
		result.Outcome = OutcomeUnmatched
		result.Reason = ReasonReferenceNotFound
		m.logger.WithField("reference", candidate).Debug("Candidate reference not found in ledger")
		return result, nil
	}

	result.Invoice = invoice

	// Exact decimal equality, no tolerance. A near-miss is a mismatch to be
	// reviewed by a human, not a partial payment.
	if invoice.TotalAmount.Equal(entry.Amount) {
		result.Outcome = OutcomeMatched
		return result, nil
	}

	result.Outcome = OutcomeAmountMismatch
	result.Reason = ReasonAmountMismatch
	m.logger.WithFields(logger.Fields{
		"reference":      candidate,
		"invoice_amount": invoice.TotalAmount.String(),
		"entry_amount":   entry.Amount.String(),
	}).Debug("Amount mismatch between entry and invoice")

	return result, nil
}
