package parsers

import (
	"fmt"
	"time"
)

// Camt053Namespace is the document namespace of the supported statement
// schema version.
const Camt053Namespace = "urn:iso:std:iso:20022:tech:xsd:camt.053.001.02"

// Config holds configuration for the statement parser.
type Config struct {
	// Namespace is the required document namespace. Documents carrying any
	// other namespace are rejected as malformed.
	Namespace string

	// Clock supplies the processing date used when an entry carries no
	// booking date. Injected so tests are deterministic.
	Clock func() time.Time
}

// DefaultConfig returns a configuration for camt.053.001.02 documents using
// the system clock.
func DefaultConfig() *Config {
	return &Config{
		Namespace: Camt053Namespace,
		Clock:     time.Now,
	}
}

// Validate validates the parser configuration.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("document namespace is required")
	}

	if c.Clock == nil {
		return fmt.Errorf("clock function is required")
	}

	return nil
}
