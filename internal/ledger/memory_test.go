package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-reconciliation-service/internal/models"
)

func sentInvoice(reference string, amount string, dueDate time.Time) *models.Invoice {
	return &models.Invoice{
		ReferenceNumber: reference,
		TotalAmount:     decimal.RequireFromString(amount),
		IssueDate:       dueDate.AddDate(0, -1, 0),
		DueDate:         dueDate,
		Status:          models.StatusSent,
	}
}

func TestMemoryLedgerFindByReference(t *testing.T) {
	ledger := NewMemoryLedger()
	due := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Seed(sentInvoice("INV-2025-0042", "250.00", due)))

	invoice, err := ledger.FindByReference(context.Background(), "INV-2025-0042")
	require.NoError(t, err)
	require.NotNil(t, invoice)
	assert.Equal(t, "INV-2025-0042", invoice.ReferenceNumber)

	missing, err := ledger.FindByReference(context.Background(), "INV-2025-9999")
	require.NoError(t, err)
	assert.Nil(t, missing, "an unknown reference is a negative result, not an error")
}

func TestMemoryLedgerReturnsCopies(t *testing.T) {
	ledger := NewMemoryLedger()
	due := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Seed(sentInvoice("INV-2025-0042", "250.00", due)))

	first, err := ledger.FindByReference(context.Background(), "INV-2025-0042")
	require.NoError(t, err)
	first.Status = models.StatusPaid

	second, err := ledger.FindByReference(context.Background(), "INV-2025-0042")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, second.Status,
		"mutating a returned invoice must not touch ledger state")
}

func TestMemoryLedgerSave(t *testing.T) {
	ledger := NewMemoryLedger()
	due := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Seed(sentInvoice("INV-2025-0042", "250.00", due)))

	invoice, err := ledger.FindByReference(context.Background(), "INV-2025-0042")
	require.NoError(t, err)

	invoice.Status = models.StatusPaid
	require.NoError(t, ledger.Save(context.Background(), invoice))

	saved, err := ledger.FindByReference(context.Background(), "INV-2025-0042")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, saved.Status)

	invoice.Status = "shipped"
	assert.Error(t, ledger.Save(context.Background(), invoice))
}

func TestMemoryLedgerAppendPaymentLog(t *testing.T) {
	ledger := NewMemoryLedger()
	bookingDate := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)

	first := models.NewPaymentLogEntry("INV-2025-0042", decimal.RequireFromString("250.00"), bookingDate, "payment received on 2025-08-14")
	second := models.NewPaymentLogEntry("INV-2025-0042", decimal.RequireFromString("250.00"), bookingDate, "payment received on 2025-08-14")

	require.NoError(t, ledger.AppendPaymentLog(context.Background(), first))
	require.NoError(t, ledger.AppendPaymentLog(context.Background(), second))

	logs := ledger.PaymentLogs("INV-2025-0042")
	require.Len(t, logs, 2, "the log is append-only; repeated payments keep their own rows")
	assert.NotEqual(t, logs[0].ID, logs[1].ID)

	assert.Empty(t, ledger.PaymentLogs("RE-2025-1234"))
}

func TestMemoryLedgerListOverdueOpen(t *testing.T) {
	ledger := NewMemoryLedger()
	asOf := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	overdueSent := sentInvoice("RE-2025-1234", "1180.50", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	dueToday := sentInvoice("INV-2025-0042", "250.00", asOf)
	future := sentInvoice("INV-2025-0043", "80.00", asOf.AddDate(0, 0, 10))
	paid := sentInvoice("INV-2025-0001", "10.00", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	paid.Status = models.StatusPaid
	reminded := sentInvoice("INV-2025-0002", "55.00", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	reminded.Status = models.StatusReminder
	reminded.ReminderLevel = 1
	alreadyOverdue := sentInvoice("INV-2025-0003", "77.00", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	alreadyOverdue.Status = models.StatusOverdue
	alreadyOverdue.ReminderLevel = 1

	require.NoError(t, ledger.Seed(overdueSent, dueToday, future, paid, reminded, alreadyOverdue))

	overdue, err := ledger.ListOverdueOpen(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, overdue, 2)

	references := []string{overdue[0].ReferenceNumber, overdue[1].ReferenceNumber}
	assert.ElementsMatch(t, []string{"RE-2025-1234", "INV-2025-0002"}, references)
}

func TestMemoryLedgerConcurrentAccess(t *testing.T) {
	ledger := NewMemoryLedger()
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Seed(sentInvoice("RE-2025-1234", "1180.50", due)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				invoice, err := ledger.FindByReference(context.Background(), "RE-2025-1234")
				if err != nil || invoice == nil {
					t.Error("Lookup failed during concurrent access")
					return
				}
				invoice.Status = models.StatusReminder
				invoice.ReminderLevel = 1
				if err := ledger.Save(context.Background(), invoice); err != nil {
					t.Errorf("Save failed during concurrent access: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	invoice, err := ledger.FindByReference(context.Background(), "RE-2025-1234")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReminder, invoice.Status)
}
