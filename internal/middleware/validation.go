package middleware

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxQueryLength = 4000
	maxDepth       = 10
)

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// ValidateQuery validates the text of a query.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(query) > maxQueryLength {
		return errors.New("query exceeds maximum length")
	}
	if !utf8.ValidString(query) {
		return errors.New("query must be valid UTF-8")
	}
	return nil
}

// ValidateTicker validates an exchange ticker symbol such as AAPL or BRK.B.
func ValidateTicker(ticker string) error {
	if !tickerPattern.MatchString(strings.ToUpper(strings.TrimSpace(ticker))) {
		return errors.New("invalid ticker symbol")
	}
	return nil
}

// ValidateDepth validates the number of annual filings to ingest.
func ValidateDepth(depth int) error {
	if depth < 1 || depth > maxDepth {
		return errors.New("depth must be between 1 and 10")
	}
	return nil
}

// ValidateSessionID validates a session ID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}
