// Package parsers decodes ISO 20022 camt.053 bank statement documents into
// normalized bank entries.
//
// A statement is processed as a whole: a document that is not valid XML, or
// that does not carry the expected camt.053 namespace, is rejected outright
// and nothing is extracted from it. Problems confined to a single entry (a
// non-numeric amount, an unknown credit/debit indicator) skip that entry and
// leave the rest of the statement intact; every skipped entry is recorded in
// the parse stats so a run report can account for it.
package parsers

import (
	"encoding/xml"
	"os"
	"strings"

	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// StatementParser decodes camt.053 documents into ordered bank entries.
type StatementParser struct {
	config *Config
	logger logger.Logger
}

// NewStatementParser creates a statement parser with the given configuration.
func NewStatementParser(config *Config) (*StatementParser, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "parser", config, err)
	}

	return &StatementParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("statement_parser"),
	}, nil
}

// ParseStats records what happened while parsing one statement document.
type ParseStats struct {
	EntriesTotal   int
	EntriesParsed  int
	EntriesSkipped int
	Errors         []*apperrors.EngineError
}

// AddError records a per-entry error and counts the entry as skipped.
func (s *ParseStats) AddError(err *apperrors.EngineError) {
	s.EntriesSkipped++
	s.Errors = append(s.Errors, err)
}

// camt.053 document structure, limited to the elements this engine reads.
type camtDocument struct {
	XMLName xml.Name    `xml:"Document"`
	Entries []camtEntry `xml:"BkToCstmrStmt>Stmt>Ntry"`
}

type camtEntry struct {
	Amount         string   `xml:"Amt"`
	CreditDebit    string   `xml:"CdtDbtInd"`
	BookingDate    string   `xml:"BookgDt>Dt"`
	Unstructured   []string `xml:"NtryDtls>TxDtls>RmtInf>Ustrd"`
	AdditionalInfo string   `xml:"AddtlNtryInf"`
}

// ParseFile reads and parses a statement file from disk.
func (p *StatementParser) ParseFile(path string) ([]*models.BankEntry, *ParseStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, nil, apperrors.FileError(apperrors.CodeFilePermission, path, err)
		}
		return nil, nil, apperrors.FileError("", path, err)
	}

	return p.Parse(data, path)
}

// Parse decodes one camt.053 document into an ordered sequence of bank
// entries. The name argument only labels errors and log lines.
//
// A malformed document or wrong namespace fails the whole statement; no
// partial results are returned. Per-entry problems skip the entry and are
// recorded in the returned stats.
func (p *StatementParser) Parse(data []byte, name string) ([]*models.BankEntry, *ParseStats, error) {
	var doc camtDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		p.logger.WithError(err).WithField("file", name).Error("Failed to decode statement document")
		return nil, nil, apperrors.MalformedDocumentError(name, err)
	}

	if doc.XMLName.Space != p.config.Namespace {
		p.logger.WithFields(logger.Fields{
			"file":      name,
			"namespace": doc.XMLName.Space,
			"expected":  p.config.Namespace,
		}).Error("Statement document carries an unsupported namespace")
		return nil, nil, apperrors.New(apperrors.CategoryParse, apperrors.CodeMissingNamespace,
			"statement document does not carry the required camt.053 namespace").
			WithSuggestion("only camt.053.001.02 documents are supported").
			WithContext("file", name).
			WithContext("namespace", doc.XMLName.Space)
	}

	stats := &ParseStats{EntriesTotal: len(doc.Entries)}
	entries := make([]*models.BankEntry, 0, len(doc.Entries))

	for i, raw := range doc.Entries {
		entry, err := p.parseEntry(&raw, name, i)
		if err != nil {
			p.logger.WithError(err).WithFields(logger.Fields{
				"file":  name,
				"entry": i,
			}).Warn("Skipping unparsable statement entry")
			stats.AddError(err)
			continue
		}

		stats.EntriesParsed++
		entries = append(entries, entry)
	}

	p.logger.WithFields(logger.Fields{
		"file":    name,
		"total":   stats.EntriesTotal,
		"parsed":  stats.EntriesParsed,
		"skipped": stats.EntriesSkipped,
	}).Info("Parsed statement document")

	return entries, stats, nil
}

// parseEntry converts one Ntry node into a BankEntry.
func (p *StatementParser) parseEntry(raw *camtEntry, file string, index int) (*models.BankEntry, *apperrors.EngineError) {
	amount, err := models.ParseAmount(raw.Amount)
	if err != nil {
		return nil, apperrors.InvalidAmountError(file, index, strings.TrimSpace(raw.Amount))
	}

	direction, err := models.ParseEntryDirection(raw.CreditDebit)
	if err != nil {
		return nil, apperrors.New(apperrors.CategoryParse, apperrors.CodeInvalidDirection,
			err.Error()).
			WithContext("file", file).
			WithContext("entry", index).
			WithContext("value", raw.CreditDebit)
	}

	// The statement may omit the booking date; fall back to the processing
	// date, matching how a same-day statement is booked.
	bookingDate := models.DateOnly(p.config.Clock())
	if strings.TrimSpace(raw.BookingDate) != "" {
		bookingDate, err = models.ParseDate(raw.BookingDate)
		if err != nil {
			return nil, apperrors.New(apperrors.CategoryParse, apperrors.CodeInvalidDate,
				err.Error()).
				WithContext("file", file).
				WithContext("entry", index).
				WithContext("value", raw.BookingDate)
		}
	}

	return &models.BankEntry{
		Amount:         amount,
		Direction:      direction,
		BookingDate:    bookingDate,
		RemittanceText: joinRemittanceText(raw.Unstructured, raw.AdditionalInfo),
	}, nil
}

// joinRemittanceText concatenates all unstructured remittance fragments plus
// the additional entry information into one space-joined string. Payers split
// references across fragments often enough that matching must see the whole
// text.
func joinRemittanceText(unstructured []string, additional string) string {
	fragments := make([]string, 0, len(unstructured)+1)
	for _, fragment := range unstructured {
		if trimmed := strings.TrimSpace(fragment); trimmed != "" {
			fragments = append(fragments, trimmed)
		}
	}
	if trimmed := strings.TrimSpace(additional); trimmed != "" {
		fragments = append(fragments, trimmed)
	}
	return strings.Join(fragments, " ")
}
