// Package predicate builds the literal-list fragment used inside IN (...)
// query predicates.
//
// The builders are pure functions over value sets. Values are single-quoted
// with embedded quotes doubled, blank elements are skipped, duplicates are
// collapsed, and an empty set renders as "()" — a syntactically valid
// fragment that matches nothing. Embedding the fragment into a larger raw
// query string remains the caller's responsibility and risk; quote escaping
// is the only sanitization performed.
package predicate

import (
	"strings"

	"github.com/google/uuid"
)

// Values is the input to In: a set of literal values tagged by kind.
// Construct one with Identifiers, Strings, or UUIDs; the constructor makes
// explicit which branch a caller means, so there is no ambiguity to resolve
// when both kinds of data are around.
type Values struct {
	values []string
}

// Identifiers builds a Values set from record identifiers.
func Identifiers(ids ...string) Values {
	return Values{values: ids}
}

// Strings builds a Values set from arbitrary string literals.
func Strings(values ...string) Values {
	return Values{values: values}
}

// UUIDs builds a Values set from UUID identifiers.
func UUIDs(ids ...uuid.UUID) Values {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return Values{values: values}
}

// In renders the parenthesized, comma-separated literal list for the given
// set. Elements are emitted in first-occurrence order, quoted and escaped:
//
//	In(Identifiers("A", "B"))  // ('A', 'B')
//	In(Strings("it's"))        // ('it''s')
//	In(Strings())              // ()
//
// Blank or whitespace-only elements are skipped, never emitted as ''.
func In(set Values) string {
	var b strings.Builder
	b.WriteByte('(')

	seen := make(map[string]struct{}, len(set.values))
	for _, value := range set.values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}

		if len(seen) > 1 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(value, "'", "''"))
		b.WriteByte('\'')
	}

	b.WriteByte(')')
	return b.String()
}

// BuildInClause renders the literal list from two optional inputs. When the
// identifier set is non-empty it is the operative source and the string set
// is ignored; otherwise the string set is used. This precedence rule is
// deliberate and fixed — callers that want it explicit should use In with a
// constructed Values instead.
func BuildInClause(ids, strs []string) string {
	if len(ids) > 0 {
		return In(Identifiers(ids...))
	}
	return In(Strings(strs...))
}

// InIdentifiers is shorthand for In(Identifiers(ids...)).
func InIdentifiers(ids ...string) string {
	return In(Identifiers(ids...))
}

// InStrings is shorthand for In(Strings(values...)).
func InStrings(values ...string) string {
	return In(Strings(values...))
}
