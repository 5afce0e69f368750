// Package ledger provides access to the invoice store the engine reconciles
// against.
//
// The engine never reaches into ambient state: every component takes an
// InvoiceLedger value explicitly. Two implementations are provided, an
// in-memory ledger for tests and dry runs and a PostgreSQL ledger for
// production use.
package ledger

import (
	"context"
	"time"

	"invoice-reconciliation-service/internal/models"
)

// InvoiceLedger is the store abstraction consumed by the matcher, the payment
// recorder, and the escalation scheduler.
//
// Implementations must serialize status mutations per invoice: a
// reconciliation "paid" write and an escalation "overdue" write on the same
// invoice may never interleave inconsistently.
type InvoiceLedger interface {
	// FindByReference looks up exactly one invoice by its reference number.
	// Returns (nil, nil) when no invoice carries the reference.
	FindByReference(ctx context.Context, reference string) (*models.Invoice, error)

	// Save persists the invoice's current state.
	Save(ctx context.Context, invoice *models.Invoice) error

	// AppendPaymentLog appends an immutable payment log entry.
	AppendPaymentLog(ctx context.Context, entry *models.PaymentLogEntry) error

	// ListOverdueOpen returns every invoice with status sent or reminder
	// whose due date lies strictly before asOf. Overdue invoices are already
	// at the end of the reminder track and are not listed again.
	ListOverdueOpen(ctx context.Context, asOf time.Time) ([]*models.Invoice, error)
}
