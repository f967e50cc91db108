// Package scope provides the pluggable out-of-scope detector consumed by the
// evidence gate.
package scope

import (
	"strings"
	"unicode"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

// KeywordDetector flags queries containing configured off-topic terms.
// It is deliberately simple; deployments can swap in a classifier behind the
// same interface.
type KeywordDetector struct {
	blocked map[string]struct{}
}

var _ rag.ScopeDetector = (*KeywordDetector)(nil)

// NewKeywordDetector builds a detector from a blocklist of terms. Terms are
// matched case-insensitively against whole query tokens.
func NewKeywordDetector(terms []string) *KeywordDetector {
	blocked := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			blocked[term] = struct{}{}
		}
	}
	return &KeywordDetector{blocked: blocked}
}

// OutOfScope reports whether the query contains any blocked term.
func (d *KeywordDetector) OutOfScope(query string) bool {
	if len(d.blocked) == 0 {
		return false
	}
	tokens := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, token := range tokens {
		if _, ok := d.blocked[token]; ok {
			return true
		}
	}
	return false
}

// PermissiveDetector never flags anything; the default when no blocklist is
// configured.
type PermissiveDetector struct{}

var _ rag.ScopeDetector = (*PermissiveDetector)(nil)

// OutOfScope always returns false.
func (PermissiveDetector) OutOfScope(string) bool { return false }
