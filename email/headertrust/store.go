package headertrust

import "strings"

// Field is a single (name, value) pair as enumerated by a MIME header
// scanner. Names are expected to be ASCII per RFC 5322; values preserve
// whitespace exactly as seen on the wire.
type Field struct {
	Name  string
	Value string
}

// Record is a header stored inside a Store: a Field plus the trust bit
// the reconciler has established for it.
type Record struct {
	Name    string
	Value   string
	Trusted bool
}

// ignoredNames are never stored, because they legitimately differ
// between the envelope and the signed inner message and carry no
// authenticated meaning either way.
var ignoredNames = map[string]bool{
	"content-type": true,
	"mime-version": true,
	"received":     true,
}

func isIgnoredName(name string) bool {
	return ignoredNames[strings.ToLower(name)]
}

// RequiredTrustedNames must each have at least one trusted record once
// reconciliation is complete, or the message is refused.
var RequiredTrustedNames = []string{"From", "To", "Subject"}

// Store is an ordered, duplicate-allowing sequence of header records.
// Insertion order is preserved for deterministic output; it carries no
// security meaning. A Store is owned exclusively by a Reconciler during
// import and handed off read-only to a View once reconciliation
// finishes.
type Store struct {
	records []Record
}

// Append adds a record. Duplicates of (name, value) are permitted.
func (s *Store) Append(name, value string, trusted bool) {
	s.records = append(s.records, Record{Name: name, Value: value, Trusted: trusted})
}

// Predicate matches a Record for the Store's predicate-based operations.
type Predicate func(Record) bool

// NameEquals builds a Predicate matching records by name.
func NameEquals(name string, relaxed bool) Predicate {
	return func(r Record) bool { return nameEqual(r.Name, name, relaxed) }
}

// ValueEquals builds a Predicate matching records by value.
func ValueEquals(value string, relaxed bool) Predicate {
	return func(r Record) bool { return valueEqual(r.Value, value, relaxed) }
}

// And composes predicates, matching a Record only if every one does.
func And(preds ...Predicate) Predicate {
	return func(r Record) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// MarkTrustedWhere sets Trusted=true on every record satisfying pred
// and returns the number of records it affected. Trust is monotonic:
// a record that is already trusted stays trusted.
func (s *Store) MarkTrustedWhere(pred Predicate) int {
	n := 0
	for i := range s.records {
		if pred(s.records[i]) {
			if !s.records[i].Trusted {
				s.records[i].Trusted = true
			}
			n++
		}
	}
	return n
}

// RemoveWhere deletes every record satisfying pred and returns the
// count removed.
func (s *Store) RemoveWhere(pred Predicate) int {
	kept := s.records[:0]
	n := 0
	for _, r := range s.records {
		if pred(r) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return n
}

// FindTrusted returns the trimmed values of every trusted record with
// the given name (case-insensitive), preserving insertion order.
func (s *Store) FindTrusted(name string) []string {
	return s.find(name, true)
}

// FindAny returns the trimmed values of every record with the given
// name (case-insensitive), trust-agnostic, preserving insertion order.
func (s *Store) FindAny(name string) []string {
	return s.find(name, false)
}

func (s *Store) find(name string, trustedOnly bool) []string {
	var out []string
	for _, r := range s.records {
		if !nameEqual(r.Name, name, true) {
			continue
		}
		if trustedOnly && !r.Trusted {
			continue
		}
		out = append(out, strings.TrimSpace(r.Value))
	}
	return out
}

// Records returns a copy of the store's records, in insertion order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// nameEqual implements the two name-equality precisions from the data
// model: strict is byte-identical, relaxed is ASCII case-insensitive.
func nameEqual(a, b string, relaxed bool) bool {
	if relaxed {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// valueEqual implements the two value-equality precisions: strict is
// byte-identical, relaxed collapses every maximal run of whitespace to
// a single space and trims both ends before comparing.
func valueEqual(a, b string, relaxed bool) bool {
	if !relaxed {
		return a == b
	}
	return collapseWhitespace(a) == collapseWhitespace(b)
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	inWS := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
