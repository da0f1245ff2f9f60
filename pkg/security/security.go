// Package security provides pattern-based checks for tool input that
// carries raw query text or free-form user content.
//
// The checks are heuristics over raw strings, not a SQL parser or a PII
// classifier. They can both over- and under-match and must be treated as
// best-effort gates, not authoritative decisions.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// sqlPattern pairs a compiled pattern with the violation it detects.
type sqlPattern struct {
	re     *regexp.Regexp
	reason string
}

var sqlPatterns = []sqlPattern{
	{regexp.MustCompile(`(?i)\b(DROP|DELETE|INSERT|UPDATE|CREATE|ALTER)\b`), "data definition or mutation keyword"},
	{regexp.MustCompile(`(?i)\b(EXEC|EXECUTE)\b`), "execute statement"},
	{regexp.MustCompile(`(?i)\bUNION\b[\s\S]+\bSELECT\b`), "union-based injection"},
	{regexp.MustCompile(`;`), "statement terminator"},
	{regexp.MustCompile(`--`), "line comment"},
	{regexp.MustCompile(`/\*|\*/`), "block comment"},
	{regexp.MustCompile(`(?i)\b(xp_|sp_)\w*`), "stored procedure prefix"},
}

var readOnlyPrefixes = []string{"SELECT", "WITH", "SHOW", "DESCRIBE"}

var piiPatterns = []*regexp.Regexp{
	// Swedish personal identity number, with or without separator
	regexp.MustCompile(`\b(19|20)?\d{6}[-+]?\d{4}\b`),
	// Email addresses
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
}

// ValidateSQL rejects queries containing injection markers or statements
// that could mutate data. A nil return means no known pattern matched.
func ValidateSQL(query string) error {
	for _, p := range sqlPatterns {
		if p.re.MatchString(query) {
			return fmt.Errorf("query rejected: %s detected", p.reason)
		}
	}
	return nil
}

// IsReadOnlySQL reports whether the query starts with a read-only verb.
func IsReadOnlySQL(query string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// DetectPII reports whether the text contains a Swedish personal identity
// number or an email address.
func DetectPII(text string) bool {
	for _, re := range piiPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
