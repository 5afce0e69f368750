package ledger

import (
	"context"
	"sync"
	"time"

	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
)

// MemoryLedger is an in-memory InvoiceLedger used by tests and the CLI's
// dry-run mode. A single mutex serializes all mutations, which gives the
// single-writer guarantee the interface requires; concurrent reconciliation
// and escalation sweeps are safe against it.
type MemoryLedger struct {
	mu       sync.RWMutex
	invoices map[string]*models.Invoice
	logs     []*models.PaymentLogEntry
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		invoices: make(map[string]*models.Invoice),
	}
}

// Seed loads invoices into the ledger, replacing any existing invoice with
// the same reference number.
func (l *MemoryLedger) Seed(invoices ...*models.Invoice) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, invoice := range invoices {
		if err := invoice.Validate(); err != nil {
			return apperrors.ValidationError(apperrors.CodeInvalidValue, "invoice", invoice.ReferenceNumber, err)
		}
		copied := *invoice
		l.invoices[invoice.ReferenceNumber] = &copied
	}

	return nil
}

// FindByReference looks up an invoice by its reference number. Returns
// (nil, nil) when the reference is unknown.
func (l *MemoryLedger) FindByReference(ctx context.Context, reference string) (*models.Invoice, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	invoice, ok := l.invoices[reference]
	if !ok {
		return nil, nil
	}

	copied := *invoice
	return &copied, nil
}

// Save persists the invoice's current state.
func (l *MemoryLedger) Save(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return apperrors.ValidationError(apperrors.CodeInvalidValue, "invoice", invoice.ReferenceNumber, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	copied := *invoice
	l.invoices[invoice.ReferenceNumber] = &copied
	return nil
}

// AppendPaymentLog appends an immutable payment log entry.
func (l *MemoryLedger) AppendPaymentLog(ctx context.Context, entry *models.PaymentLogEntry) error {
	if err := entry.Validate(); err != nil {
		return apperrors.ValidationError(apperrors.CodeInvalidValue, "payment_log", entry.InvoiceReference, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	copied := *entry
	l.logs = append(l.logs, &copied)
	return nil
}

// ListOverdueOpen returns every sent or reminded invoice whose due date lies
// strictly before asOf.
func (l *MemoryLedger) ListOverdueOpen(ctx context.Context, asOf time.Time) ([]*models.Invoice, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cutoff := models.DateOnly(asOf)
	var overdue []*models.Invoice
	for _, invoice := range l.invoices {
		eligible := invoice.Status == models.StatusSent || invoice.Status == models.StatusReminder
		if eligible && models.DateOnly(invoice.DueDate).Before(cutoff) {
			copied := *invoice
			overdue = append(overdue, &copied)
		}
	}

	return overdue, nil
}

// PaymentLogs returns the payment log entries recorded for the given invoice
// reference, in append order.
func (l *MemoryLedger) PaymentLogs(reference string) []*models.PaymentLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var entries []*models.PaymentLogEntry
	for _, entry := range l.logs {
		if entry.InvoiceReference == reference {
			copied := *entry
			entries = append(entries, &copied)
		}
	}

	return entries
}
