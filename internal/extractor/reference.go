// Package extractor scans free-text remittance information for invoice
// reference tokens.
package extractor

import (
	"regexp"
)

// referencePattern accepts the three reference shapes invoices are issued
// under: a year-sequence form ("2025-0001") and two alphabetic-prefixed forms
// ("RE-2025-1234", "INV-2025-0002"). Matching is case-insensitive and
// word-bounded; the first match in the text wins.
var referencePattern = regexp.MustCompile(
	`(?i)(\b\d{4}-\d{4,}\b|\bRE-\d{4}-\d+\b|\bINV-\d{4}-\d+\b)`,
)

// ReferenceExtractor finds candidate invoice references in remittance text.
type ReferenceExtractor struct {
	pattern *regexp.Regexp
}

// NewReferenceExtractor creates an extractor using the standard reference
// shapes.
func NewReferenceExtractor() *ReferenceExtractor {
	return &ReferenceExtractor{pattern: referencePattern}
}

// Extract returns the first candidate reference found in the text. The false
// return is a legitimate negative result, not an error: the caller classifies
// such entries as unmatched.
func (e *ReferenceExtractor) Extract(remittanceText string) (string, bool) {
	match := e.pattern.FindString(remittanceText)
	if match == "" {
		return "", false
	}
	return match, true
}
