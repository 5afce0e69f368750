// Package reporter renders reconciliation run reports and escalation sweep
// results for human or machine consumption.
//
// Two formats are supported: console output for terminal review and JSON for
// programmatic consumers.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"invoice-reconciliation-service/internal/escalation"
	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/internal/recorder"
)

// OutputFormat represents a supported report output format.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation.
type ReportConfig struct {
	Format OutputFormat `json:"format"`
	// IncludeRemittanceText controls whether unmatched entries print their
	// raw remittance text. Useful for triage, noisy for summaries.
	IncludeRemittanceText bool `json:"include_remittance_text"`
}

// DefaultReportConfig returns a default report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                FormatConsole,
		IncludeRemittanceText: true,
	}
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// Reporter renders run and sweep results.
type Reporter struct {
	config *ReportConfig
}

// NewReporter creates a reporter with the given configuration.
func NewReporter(config *ReportConfig) (*Reporter, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Reporter{config: config}, nil
}

// WriteRunReport renders one statement's run report to the writer.
func (r *Reporter) WriteRunReport(w io.Writer, file string, report *recorder.RunReport) error {
	if r.config.Format == FormatJSON {
		return writeJSON(w, struct {
			File   string              `json:"file,omitempty"`
			Report *recorder.RunReport `json:"report"`
		}{File: file, Report: report})
	}

	var b strings.Builder
	if file != "" {
		fmt.Fprintf(&b, "Statement: %s\n", file)
	}
	fmt.Fprintf(&b, "Matched invoices: %d\n", len(report.Matched))
	for _, ref := range report.Matched {
		fmt.Fprintf(&b, "  %s\n", ref)
	}

	fmt.Fprintf(&b, "Entries needing review: %d\n", len(report.Unmatched))
	for _, unmatched := range report.Unmatched {
		line := fmt.Sprintf("  %s %s booked %s reason=%s",
			unmatched.Entry.Amount.String(),
			unmatched.Entry.Direction,
			unmatched.Entry.BookingDate.Format("2006-01-02"),
			unmatched.Reason,
		)
		if unmatched.CandidateReference != "" {
			line += fmt.Sprintf(" candidate=%s", unmatched.CandidateReference)
		}
		fmt.Fprintln(&b, line)
		if r.config.IncludeRemittanceText && unmatched.Entry.RemittanceText != "" {
			fmt.Fprintf(&b, "    remittance: %q\n", unmatched.Entry.RemittanceText)
		}
	}

	if report.EntriesSkipped > 0 {
		fmt.Fprintf(&b, "Entries skipped by the parser: %d\n", report.EntriesSkipped)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteBatchResults renders the per-file results of a batch run.
func (r *Reporter) WriteBatchResults(w io.Writer, results []reconciler.FileResult) error {
	if r.config.Format == FormatJSON {
		type fileResult struct {
			File   string              `json:"file"`
			Report *recorder.RunReport `json:"report,omitempty"`
			Error  string              `json:"error,omitempty"`
		}
		out := make([]fileResult, 0, len(results))
		for _, result := range results {
			fr := fileResult{File: result.File, Report: result.Report}
			if result.Err != nil {
				fr.Error = result.Err.Error()
			}
			out = append(out, fr)
		}
		return writeJSON(w, out)
	}

	for i, result := range results {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if result.Err != nil {
			if _, err := fmt.Fprintf(w, "Statement: %s\nFAILED: %v\n", result.File, result.Err); err != nil {
				return err
			}
			continue
		}
		if err := r.WriteRunReport(w, result.File, result.Report); err != nil {
			return err
		}
	}
	return nil
}

// WriteSweepResult renders an escalation sweep summary.
func (r *Reporter) WriteSweepResult(w io.Writer, result *escalation.SweepResult) error {
	if r.config.Format == FormatJSON {
		return writeJSON(w, result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Escalation sweep as of %s\n", result.AsOf.Format("2006-01-02"))
	fmt.Fprintf(&b, "Invoices examined: %d\n", result.Examined)
	fmt.Fprintf(&b, "First reminders issued: %d\n", len(result.FirstReminders))
	for _, ref := range result.FirstReminders {
		fmt.Fprintf(&b, "  %s\n", ref)
	}
	fmt.Fprintf(&b, "Marked overdue: %d\n", len(result.MarkedOverdue))
	for _, ref := range result.MarkedOverdue {
		fmt.Fprintf(&b, "  %s\n", ref)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, payload interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
