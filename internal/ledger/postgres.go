package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// Querier abstracts the pgx query interface so the ledger can run against a
// pool, a transaction, or a mock.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresLedger is the production InvoiceLedger over the invoicing schema's
// invoices and payment_logs tables.
//
// Expected schema:
//
//	invoices(reference_number text primary key, total_amount numeric,
//	         issue_date date, due_date date, status text,
//	         reminder_level int, last_reminder_date date)
//	payment_logs(id uuid primary key, invoice_reference text,
//	             amount numeric, booking_date date, message text,
//	             created_at timestamptz)
//
// Each status mutation is a single UPDATE keyed by reference number, so the
// database row lock serializes reconciliation and escalation writes on the
// same invoice.
type PostgresLedger struct {
	querier Querier
	logger  logger.Logger
}

// NewPostgresLedger creates a ledger over the given querier.
func NewPostgresLedger(querier Querier) *PostgresLedger {
	return &PostgresLedger{
		querier: querier,
		logger:  logger.GetGlobalLogger().WithComponent("postgres_ledger"),
	}
}

// Connect opens a connection pool for the given database URL and returns a
// ledger over it.
func Connect(ctx context.Context, databaseURL string) (*PostgresLedger, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, apperrors.LedgerError(apperrors.CodeLedgerUnavailable, "connect", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, apperrors.LedgerError(apperrors.CodeLedgerUnavailable, "ping", err)
	}

	return NewPostgresLedger(pool), pool, nil
}

// FindByReference looks up an invoice by its reference number. Returns
// (nil, nil) when the reference is unknown.
func (l *PostgresLedger) FindByReference(ctx context.Context, reference string) (*models.Invoice, error) {
	query := `
		SELECT reference_number, total_amount, issue_date, due_date, status, reminder_level, last_reminder_date
		FROM invoices
		WHERE reference_number = $1
	`

	var (
		invoice          models.Invoice
		status           string
		lastReminderDate *time.Time
	)
	err := l.querier.QueryRow(ctx, query, reference).Scan(
		&invoice.ReferenceNumber,
		&invoice.TotalAmount,
		&invoice.IssueDate,
		&invoice.DueDate,
		&status,
		&invoice.ReminderLevel,
		&lastReminderDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		l.logger.WithError(err).WithField("reference", reference).Error("Failed to look up invoice")
		return nil, apperrors.LedgerError(apperrors.CodeLedgerReadFailed, "find_by_reference", err)
	}

	invoice.Status = models.InvoiceStatus(status)
	invoice.LastReminderDate = lastReminderDate
	return &invoice, nil
}

// Save persists the invoice's mutable state.
func (l *PostgresLedger) Save(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $2, reminder_level = $3, last_reminder_date = $4
		WHERE reference_number = $1
	`

	tag, err := l.querier.Exec(ctx, query,
		invoice.ReferenceNumber,
		string(invoice.Status),
		invoice.ReminderLevel,
		invoice.LastReminderDate,
	)
	if err != nil {
		l.logger.WithError(err).WithField("reference", invoice.ReferenceNumber).Error("Failed to save invoice")
		return apperrors.LedgerError(apperrors.CodeLedgerWriteFailed, "save_invoice", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.LedgerError(apperrors.CodeLedgerWriteFailed, "save_invoice", nil).
			WithContext("reference", invoice.ReferenceNumber).
			WithSuggestion("the invoice no longer exists in the ledger")
	}

	return nil
}

// AppendPaymentLog appends an immutable payment log entry.
func (l *PostgresLedger) AppendPaymentLog(ctx context.Context, entry *models.PaymentLogEntry) error {
	query := `
		INSERT INTO payment_logs (id, invoice_reference, amount, booking_date, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := l.querier.Exec(ctx, query,
		entry.ID,
		entry.InvoiceReference,
		entry.Amount,
		entry.BookingDate,
		entry.Message,
		entry.CreatedAt,
	)
	if err != nil {
		l.logger.WithError(err).WithField("reference", entry.InvoiceReference).Error("Failed to append payment log")
		return apperrors.LedgerError(apperrors.CodeLedgerWriteFailed, "append_payment_log", err)
	}

	return nil
}

// ListOverdueOpen returns every sent or reminded invoice whose due date lies
// strictly before asOf.
func (l *PostgresLedger) ListOverdueOpen(ctx context.Context, asOf time.Time) ([]*models.Invoice, error) {
	query := `
		SELECT reference_number, total_amount, issue_date, due_date, status, reminder_level, last_reminder_date
		FROM invoices
		WHERE status IN ($1, $2) AND due_date < $3
		ORDER BY due_date, reference_number
	`

	rows, err := l.querier.Query(ctx, query, string(models.StatusSent), string(models.StatusReminder), models.DateOnly(asOf))
	if err != nil {
		l.logger.WithError(err).Error("Failed to list overdue invoices")
		return nil, apperrors.LedgerError(apperrors.CodeLedgerReadFailed, "list_overdue_open", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		var (
			invoice          models.Invoice
			status           string
			lastReminderDate *time.Time
		)
		if err := rows.Scan(
			&invoice.ReferenceNumber,
			&invoice.TotalAmount,
			&invoice.IssueDate,
			&invoice.DueDate,
			&status,
			&invoice.ReminderLevel,
			&lastReminderDate,
		); err != nil {
			return nil, apperrors.LedgerError(apperrors.CodeLedgerReadFailed, "list_overdue_open", err)
		}

		invoice.Status = models.InvoiceStatus(status)
		invoice.LastReminderDate = lastReminderDate
		invoices = append(invoices, &invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.LedgerError(apperrors.CodeLedgerReadFailed, "list_overdue_open", err)
	}

	return invoices, nil
}
