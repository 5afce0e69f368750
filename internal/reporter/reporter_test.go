package reporter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-reconciliation-service/internal/escalation"
	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/internal/recorder"
)

func sampleReport() *recorder.RunReport {
	report := recorder.NewRunReport()
	report.Matched = []string{"INV-2025-0042"}
	report.Unmatched = []recorder.UnmatchedEntry{
		{
			Entry: &models.BankEntry{
				Amount:         decimal.RequireFromString("300.00"),
				Direction:      models.DirectionCredit,
				BookingDate:    time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC),
				RemittanceText: "Payment for RE-2025-1234",
			},
			CandidateReference: "RE-2025-1234",
			Reason:             matcher.ReasonAmountMismatch,
		},
	}
	report.EntriesSkipped = 1
	return report
}

func TestOutputFormatIsValid(t *testing.T) {
	assert.True(t, FormatConsole.IsValid())
	assert.True(t, FormatJSON.IsValid())
	assert.False(t, OutputFormat("yaml").IsValid())
}

func TestNewReporterRejectsInvalidFormat(t *testing.T) {
	_, err := NewReporter(&ReportConfig{Format: "yaml"})
	assert.Error(t, err)
}

func TestWriteRunReportConsole(t *testing.T) {
	rep, err := NewReporter(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteRunReport(&buf, "statement.xml", sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Statement: statement.xml")
	assert.Contains(t, out, "Matched invoices: 1")
	assert.Contains(t, out, "INV-2025-0042")
	assert.Contains(t, out, "Entries needing review: 1")
	assert.Contains(t, out, "reason=amount-mismatch")
	assert.Contains(t, out, "candidate=RE-2025-1234")
	assert.Contains(t, out, `remittance: "Payment for RE-2025-1234"`)
	assert.Contains(t, out, "Entries skipped by the parser: 1")
}

func TestWriteRunReportConsoleWithoutRemittance(t *testing.T) {
	rep, err := NewReporter(&ReportConfig{Format: FormatConsole, IncludeRemittanceText: false})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteRunReport(&buf, "", sampleReport()))

	out := buf.String()
	assert.NotContains(t, out, "remittance:")
	assert.NotContains(t, out, "Statement:")
}

func TestWriteRunReportJSON(t *testing.T) {
	rep, err := NewReporter(&ReportConfig{Format: FormatJSON, IncludeRemittanceText: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteRunReport(&buf, "statement.xml", sampleReport()))

	var decoded struct {
		File   string             `json:"file"`
		Report recorder.RunReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "statement.xml", decoded.File)
	assert.Equal(t, []string{"INV-2025-0042"}, decoded.Report.Matched)
	require.Len(t, decoded.Report.Unmatched, 1)
	assert.Equal(t, matcher.ReasonAmountMismatch, decoded.Report.Unmatched[0].Reason)
	assert.Equal(t, 1, decoded.Report.EntriesSkipped)
}

func TestWriteBatchResultsConsole(t *testing.T) {
	rep, err := NewReporter(nil)
	require.NoError(t, err)

	results := []reconciler.FileResult{
		{File: "good.xml", Report: sampleReport()},
		{File: "bad.xml", Err: errors.New("statement document is not a valid camt.053 file")},
	}

	var buf bytes.Buffer
	require.NoError(t, rep.WriteBatchResults(&buf, results))

	out := buf.String()
	assert.Contains(t, out, "Statement: good.xml")
	assert.Contains(t, out, "FAILED: statement document is not a valid camt.053 file")
	assert.Equal(t, 1, strings.Count(out, "FAILED:"))
}

func TestWriteBatchResultsJSON(t *testing.T) {
	rep, err := NewReporter(&ReportConfig{Format: FormatJSON, IncludeRemittanceText: true})
	require.NoError(t, err)

	results := []reconciler.FileResult{
		{File: "good.xml", Report: sampleReport()},
		{File: "bad.xml", Err: errors.New("boom")},
	}

	var buf bytes.Buffer
	require.NoError(t, rep.WriteBatchResults(&buf, results))

	var decoded []struct {
		File  string `json:"file"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "good.xml", decoded[0].File)
	assert.Empty(t, decoded[0].Error)
	assert.Equal(t, "boom", decoded[1].Error)
}

func TestWriteSweepResultConsole(t *testing.T) {
	rep, err := NewReporter(nil)
	require.NoError(t, err)

	result := &escalation.SweepResult{
		AsOf:           time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		Examined:       2,
		FirstReminders: []string{"RE-2025-1234"},
		MarkedOverdue:  []string{"INV-2025-0002"},
	}

	var buf bytes.Buffer
	require.NoError(t, rep.WriteSweepResult(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "Escalation sweep as of 2025-08-15")
	assert.Contains(t, out, "Invoices examined: 2")
	assert.Contains(t, out, "First reminders issued: 1")
	assert.Contains(t, out, "RE-2025-1234")
	assert.Contains(t, out, "Marked overdue: 1")
	assert.Contains(t, out, "INV-2025-0002")
}

func TestWriteSweepResultJSON(t *testing.T) {
	rep, err := NewReporter(&ReportConfig{Format: FormatJSON})
	require.NoError(t, err)

	result := &escalation.SweepResult{
		AsOf:           time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		FirstReminders: []string{},
		MarkedOverdue:  []string{},
	}

	var buf bytes.Buffer
	require.NoError(t, rep.WriteSweepResult(&buf, result))

	var decoded escalation.SweepResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, result.AsOf, decoded.AsOf)
	assert.Empty(t, decoded.FirstReminders)
}
