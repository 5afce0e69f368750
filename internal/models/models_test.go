package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestInvoiceStatusIsValid(t *testing.T) {
	valid := []InvoiceStatus{StatusDraft, StatusSent, StatusReminder, StatusOverdue, StatusPaid, StatusCancelled}
	for _, status := range valid {
		if !status.IsValid() {
			t.Errorf("Expected status %s to be valid", status)
		}
	}

	if InvoiceStatus("shipped").IsValid() {
		t.Error("Expected unknown status to be invalid")
	}
}

func TestInvoiceStatusIsOpen(t *testing.T) {
	tests := []struct {
		status InvoiceStatus
		open   bool
	}{
		{StatusDraft, false},
		{StatusSent, true},
		{StatusReminder, true},
		{StatusOverdue, true},
		{StatusPaid, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.status.IsOpen(); got != tt.open {
			t.Errorf("Status %s: expected IsOpen %v, got %v", tt.status, tt.open, got)
		}
	}
}

func TestInvoiceValidate(t *testing.T) {
	validInvoice := func() *Invoice {
		return &Invoice{
			ReferenceNumber: "INV-2025-0042",
			TotalAmount:     decimal.NewFromFloat(250.00),
			IssueDate:       time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
			DueDate:         time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC),
			Status:          StatusSent,
		}
	}

	if err := validInvoice().Validate(); err != nil {
		t.Fatalf("Expected valid invoice, got error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Invoice)
	}{
		{"empty reference", func(inv *Invoice) { inv.ReferenceNumber = "  " }},
		{"negative amount", func(inv *Invoice) { inv.TotalAmount = decimal.NewFromFloat(-1) }},
		{"invalid status", func(inv *Invoice) { inv.Status = "shipped" }},
		{"negative reminder level", func(inv *Invoice) { inv.ReminderLevel = -1 }},
		{"zero due date", func(inv *Invoice) { inv.DueDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := validInvoice()
			tt.mutate(invoice)
			if err := invoice.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestParseEntryDirection(t *testing.T) {
	tests := []struct {
		input     string
		expected  EntryDirection
		expectErr bool
	}{
		{"CRDT", DirectionCredit, false},
		{"DBIT", DirectionDebit, false},
		{" crdt ", DirectionCredit, false},
		{"dbit", DirectionDebit, false},
		{"CREDIT", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		direction, err := ParseEntryDirection(tt.input)
		if tt.expectErr {
			if err == nil {
				t.Errorf("Input %q: expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("Input %q: unexpected error: %v", tt.input, err)
			continue
		}
		if direction != tt.expected {
			t.Errorf("Input %q: expected %s, got %s", tt.input, tt.expected, direction)
		}
	}
}

func TestBankEntryValidate(t *testing.T) {
	entry := &BankEntry{
		Amount:      decimal.NewFromFloat(100.50),
		Direction:   DirectionCredit,
		BookingDate: time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC),
	}
	if err := entry.Validate(); err != nil {
		t.Fatalf("Expected valid entry, got error: %v", err)
	}

	invalid := &BankEntry{
		Amount:      decimal.NewFromFloat(100.50),
		Direction:   "XFER",
		BookingDate: time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC),
	}
	if err := invalid.Validate(); err == nil {
		t.Error("Expected error for invalid direction")
	}
}

func TestNewPaymentLogEntry(t *testing.T) {
	bookingDate := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
	entry := NewPaymentLogEntry("INV-2025-0042", decimal.NewFromFloat(250.00), bookingDate, "payment received on 2025-08-14")

	if entry.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("Expected a generated log entry ID")
	}
	if entry.InvoiceReference != "INV-2025-0042" {
		t.Errorf("Unexpected invoice reference: %s", entry.InvoiceReference)
	}
	if !entry.BookingDate.Equal(bookingDate) {
		t.Errorf("Unexpected booking date: %s", entry.BookingDate)
	}
	if err := entry.Validate(); err != nil {
		t.Errorf("Expected valid log entry, got error: %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input     string
		expected  string
		expectErr bool
	}{
		{"250.00", "250", false},
		{" 99.90 ", "99.9", false},
		{"0.01", "0.01", false},
		{"abc", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		amount, err := ParseAmount(tt.input)
		if tt.expectErr {
			if err == nil {
				t.Errorf("Input %q: expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("Input %q: unexpected error: %v", tt.input, err)
			continue
		}
		if amount.String() != tt.expected {
			t.Errorf("Input %q: expected %s, got %s", tt.input, tt.expected, amount.String())
		}
	}
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2025-08-14")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !date.Equal(time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date: %s", date)
	}

	if _, err := ParseDate("14.08.2025"); err == nil {
		t.Error("Expected error for non-ISO date")
	}
	if _, err := ParseDate(""); err == nil {
		t.Error("Expected error for empty date")
	}
}

func TestDateOnly(t *testing.T) {
	stamp := time.Date(2025, 8, 14, 17, 45, 12, 0, time.FixedZone("CET", 3600))
	date := DateOnly(stamp)

	if date.Hour() != 0 || date.Minute() != 0 {
		t.Errorf("Expected truncated date, got %s", date)
	}
	if date.Location() != time.UTC {
		t.Errorf("Expected UTC date, got %s", date.Location())
	}
}
