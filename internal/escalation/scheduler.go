// Package escalation advances unpaid, overdue invoices through reminder
// levels on a time-driven batch sweep.
//
// The sweep is independent of reconciliation: it runs on its own trigger and
// touches the same invoices, relying on the ledger's single-writer mutations
// to stay consistent with concurrent payment recording. Re-running a sweep on
// the same day keeps re-evaluating invoices whose status has not changed yet;
// that is intentional, an invoice leaves the reminder track only by being
// paid or cancelled.
package escalation

import (
	"context"
	"time"

	"invoice-reconciliation-service/internal/ledger"
	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// SweepResult summarizes one escalation sweep.
type SweepResult struct {
	AsOf           time.Time `json:"as_of"`
	Examined       int       `json:"examined"`
	FirstReminders []string  `json:"first_reminders"`
	MarkedOverdue  []string  `json:"marked_overdue"`
}

// Scheduler runs escalation sweeps over the invoice ledger.
type Scheduler struct {
	ledger ledger.InvoiceLedger
	logger logger.Logger
}

// NewScheduler creates a scheduler over the given ledger.
func NewScheduler(invoiceLedger ledger.InvoiceLedger) *Scheduler {
	return &Scheduler{
		ledger: invoiceLedger,
		logger: logger.GetGlobalLogger().WithComponent("escalation_scheduler"),
	}
}

// RunSweep advances every open (sent or reminded) invoice whose due date lies
// before today.
//
// An invoice without a reminder yet gets reminder level 1 and status
// reminder; an invoice already reminded at least once moves to overdue with
// its level unchanged. The sweep never demotes an invoice and never resets
// the reminder level; the only way off the reminder track is payment or an
// external cancellation.
func (s *Scheduler) RunSweep(ctx context.Context, today time.Time) (*SweepResult, error) {
	asOf := models.DateOnly(today)

	invoices, err := s.ledger.ListOverdueOpen(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{
		AsOf:           asOf,
		Examined:       len(invoices),
		FirstReminders: []string{},
		MarkedOverdue:  []string{},
	}

	for _, invoice := range invoices {
		if invoice.ReminderLevel == 0 {
			invoice.ReminderLevel = 1
			invoice.Status = models.StatusReminder
			invoice.LastReminderDate = &asOf

			if err := s.ledger.Save(ctx, invoice); err != nil {
				return result, apperrors.ReconciliationError(apperrors.CodeProcessingFailed, "escalation_sweep", err).
					WithContext("reference", invoice.ReferenceNumber)
			}

			result.FirstReminders = append(result.FirstReminders, invoice.ReferenceNumber)
			s.logger.WithField("reference", invoice.ReferenceNumber).Info("First reminder issued")
			continue
		}

		invoice.Status = models.StatusOverdue

		if err := s.ledger.Save(ctx, invoice); err != nil {
			return result, apperrors.ReconciliationError(apperrors.CodeProcessingFailed, "escalation_sweep", err).
				WithContext("reference", invoice.ReferenceNumber)
		}

		result.MarkedOverdue = append(result.MarkedOverdue, invoice.ReferenceNumber)
		s.logger.WithFields(logger.Fields{
			"reference":      invoice.ReferenceNumber,
			"reminder_level": invoice.ReminderLevel,
		}).Info("Invoice marked overdue")
	}

	s.logger.WithFields(logger.Fields{
		"as_of":           asOf.Format("2006-01-02"),
		"examined":        result.Examined,
		"first_reminders": len(result.FirstReminders),
		"marked_overdue":  len(result.MarkedOverdue),
	}).Info("Escalation sweep completed")

	return result, nil
}
