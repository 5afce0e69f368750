// Package models defines the core domain records of the invoice
// reconciliation engine: invoices, parsed bank statement entries, and
// append-only payment log entries.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	// StatusDraft is an invoice that has not been sent to the customer yet.
	StatusDraft InvoiceStatus = "draft"
	// StatusSent is an open invoice awaiting payment.
	StatusSent InvoiceStatus = "sent"
	// StatusReminder is an overdue invoice with a first reminder issued.
	StatusReminder InvoiceStatus = "reminder"
	// StatusOverdue is an overdue invoice past the first reminder.
	StatusOverdue InvoiceStatus = "overdue"
	// StatusPaid is a settled invoice.
	StatusPaid InvoiceStatus = "paid"
	// StatusCancelled is a voided invoice.
	StatusCancelled InvoiceStatus = "cancelled"
)

// String returns the string representation of the status.
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid checks if the status is one of the known lifecycle states.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusReminder, StatusOverdue, StatusPaid, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the invoice still awaits payment. Paid and cancelled
// invoices are terminal for the reminder track.
func (s InvoiceStatus) IsOpen() bool {
	switch s {
	case StatusSent, StatusReminder, StatusOverdue:
		return true
	default:
		return false
	}
}

// Invoice represents a financial obligation owed by a customer.
//
// Status reaches paid only through the payment recorder; ReminderLevel only
// increases, and only through the escalation sweep. Neither is ever reset by
// this engine.
type Invoice struct {
	ReferenceNumber  string          `json:"reference_number"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	IssueDate        time.Time       `json:"issue_date"`
	DueDate          time.Time       `json:"due_date"`
	Status           InvoiceStatus   `json:"status"`
	ReminderLevel    int             `json:"reminder_level"`
	LastReminderDate *time.Time      `json:"last_reminder_date,omitempty"`
}

// Validate performs basic validation on the invoice.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.ReferenceNumber) == "" {
		return fmt.Errorf("invoice reference number cannot be empty")
	}

	if inv.TotalAmount.IsNegative() {
		return fmt.Errorf("invoice total amount cannot be negative")
	}

	if !inv.Status.IsValid() {
		return fmt.Errorf("invalid invoice status: %s", inv.Status)
	}

	if inv.ReminderLevel < 0 {
		return fmt.Errorf("reminder level cannot be negative, got %d", inv.ReminderLevel)
	}

	if inv.DueDate.IsZero() {
		return fmt.Errorf("invoice due date cannot be zero")
	}

	return nil
}

// IsPaid reports whether the invoice has been settled.
func (inv *Invoice) IsPaid() bool {
	return inv.Status == StatusPaid
}

// String returns a string representation of the invoice.
func (inv *Invoice) String() string {
	return fmt.Sprintf("Invoice{Ref: %s, Amount: %s, Status: %s, ReminderLevel: %d}",
		inv.ReferenceNumber, inv.TotalAmount.String(), inv.Status, inv.ReminderLevel)
}

// EntryDirection is the credit/debit indicator of a statement entry, using
// the two literal values the camt.053 schema allows.
type EntryDirection string

const (
	// DirectionCredit marks an incoming payment.
	DirectionCredit EntryDirection = "CRDT"
	// DirectionDebit marks an outgoing payment.
	DirectionDebit EntryDirection = "DBIT"
)

// IsValid checks if the direction is one of the two allowed literals.
func (d EntryDirection) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// ParseEntryDirection parses a credit/debit indicator value.
func ParseEntryDirection(s string) (EntryDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRDT":
		return DirectionCredit, nil
	case "DBIT":
		return DirectionDebit, nil
	default:
		return "", fmt.Errorf("invalid credit/debit indicator '%s': must be CRDT or DBIT", s)
	}
}

// BankEntry is one transaction line parsed from a bank statement. Entries are
// ephemeral: they exist only for the duration of a reconciliation run.
type BankEntry struct {
	Amount         decimal.Decimal `json:"amount"`
	Direction      EntryDirection  `json:"direction"`
	BookingDate    time.Time       `json:"booking_date"`
	RemittanceText string          `json:"remittance_text"`
}

// Validate performs basic validation on the entry.
func (e *BankEntry) Validate() error {
	if e.Amount.IsNegative() {
		return fmt.Errorf("bank entry amount cannot be negative")
	}

	if !e.Direction.IsValid() {
		return fmt.Errorf("invalid bank entry direction: %s", e.Direction)
	}

	if e.BookingDate.IsZero() {
		return fmt.Errorf("bank entry booking date cannot be zero")
	}

	return nil
}

// IsCredit reports whether the entry is an incoming payment. Only credit
// entries are eligible for invoice matching.
func (e *BankEntry) IsCredit() bool {
	return e.Direction == DirectionCredit
}

// String returns a string representation of the entry.
func (e *BankEntry) String() string {
	return fmt.Sprintf("BankEntry{Amount: %s, Direction: %s, Booked: %s}",
		e.Amount.String(), e.Direction, e.BookingDate.Format("2006-01-02"))
}

// PaymentLogEntry is an immutable record of one payment applied to an
// invoice. Entries are append-only: created once, never mutated or deleted.
type PaymentLogEntry struct {
	ID               uuid.UUID       `json:"id"`
	InvoiceReference string          `json:"invoice_reference"`
	Amount           decimal.Decimal `json:"amount"`
	BookingDate      time.Time       `json:"booking_date"`
	Message          string          `json:"message"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewPaymentLogEntry creates a payment log entry for the given invoice and
// statement entry values.
func NewPaymentLogEntry(invoiceRef string, amount decimal.Decimal, bookingDate time.Time, message string) *PaymentLogEntry {
	return &PaymentLogEntry{
		ID:               uuid.New(),
		InvoiceReference: invoiceRef,
		Amount:           amount,
		BookingDate:      bookingDate,
		Message:          message,
		CreatedAt:        time.Now().UTC(),
	}
}

// Validate performs basic validation on the log entry.
func (p *PaymentLogEntry) Validate() error {
	if strings.TrimSpace(p.InvoiceReference) == "" {
		return fmt.Errorf("payment log invoice reference cannot be empty")
	}

	if p.BookingDate.IsZero() {
		return fmt.Errorf("payment log booking date cannot be zero")
	}

	return nil
}

// ParseAmount parses a statement amount string into a decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseDate parses a calendar date in the ISO form camt.053 uses for booking
// dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s': %w", s, err)
	}

	return t, nil
}

// DateOnly truncates a timestamp to its calendar date in UTC. Due date and
// booking date comparisons work on whole days.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
