// Package config builds component configurations for the CLI from flags and
// viper settings.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"invoice-reconciliation-service/internal/ledger"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/reporter"
)

// CreateParserConfig returns the statement parser configuration. Only
// camt.053.001.02 is supported; the parser defaults carry the namespace and
// system clock.
func CreateParserConfig() *parsers.Config {
	return parsers.DefaultConfig()
}

// CreateReportConfig creates a report configuration for the requested output
// format.
func CreateReportConfig(format string) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(format)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LedgerCloser releases resources held by a ledger, if any.
type LedgerCloser func()

// CreateLedger builds the invoice ledger for a run. With a database URL it
// connects to PostgreSQL; otherwise it builds an in-memory ledger, seeded
// from seedFile when given, for dry-run review of a statement.
func CreateLedger(ctx context.Context, databaseURL, seedFile string) (ledger.InvoiceLedger, LedgerCloser, error) {
	if databaseURL != "" {
		pgLedger, pool, err := ledger.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pgLedger, pool.Close, nil
	}

	memLedger := ledger.NewMemoryLedger()
	if seedFile != "" {
		invoices, err := LoadInvoiceSeed(seedFile)
		if err != nil {
			return nil, nil, err
		}
		if err := memLedger.Seed(invoices...); err != nil {
			return nil, nil, err
		}
	}

	return memLedger, func() {}, nil
}

// LoadInvoiceSeed reads a JSON array of invoices used to seed the in-memory
// ledger for dry runs.
func LoadInvoiceSeed(path string) ([]*models.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var invoices []*models.Invoice
	if err := json.Unmarshal(data, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}

	for _, invoice := range invoices {
		if err := invoice.Validate(); err != nil {
			return nil, fmt.Errorf("invalid invoice %s in seed file: %w", invoice.ReferenceNumber, err)
		}
	}

	return invoices, nil
}
