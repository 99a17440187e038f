package headertrust

import "strings"

// Address is the minimal address shape a View returns.
// It mirrors the host's own address type; AddressParser is the seam
// that lets a caller supply a real RFC 5322 parser without this
// package importing one.
type Address struct {
	Name string
	Addr string
}

// AddressParser parses a single Internet mail address out of a
// trimmed header value. Callers wire in their MIME layer's parser
// (e.g. an RFC 5322 address parser); headertrust never parses
// addresses itself.
type AddressParser interface {
	ParseAddress(s string) (Address, error)
}

// AddressParserFunc adapts a function to an AddressParser.
type AddressParserFunc func(s string) (Address, error)

func (f AddressParserFunc) ParseAddress(s string) (Address, error) { return f(s) }

// View is a read-only, validating accessor over a reconciled Store.
// From, To and Subject return a value only when exactly one trusted
// record carries it. MessageID, ReplyTo and IsAutoSubmitted read
// records regardless of trust.
type View struct {
	store  *Store
	parser AddressParser
}

// fetchTrusted collects the trimmed values of every trusted record
// with the given name. It fails if there are zero or more than one.
func (v *View) fetchTrusted(name string) (string, error) {
	vals := v.store.FindTrusted(name)
	switch len(vals) {
	case 0:
		return "", errHeaderMissing(name)
	case 1:
		return vals[0], nil
	default:
		return "", errHeaderDuplicated(name, len(vals))
	}
}

// From returns the trusted From address.
func (v *View) From() (Address, error) {
	return v.parseTrustedAddress("From")
}

// To returns the trusted To address.
func (v *View) To() (Address, error) {
	return v.parseTrustedAddress("To")
}

func (v *View) parseTrustedAddress(field string) (Address, error) {
	val, err := v.fetchTrusted(field)
	if err != nil {
		return Address{}, err
	}
	addr, err := v.parser.ParseAddress(val)
	if err != nil {
		return Address{}, errInvalidAddress(field)
	}
	return addr, nil
}

// Subject returns the trimmed, trusted Subject value.
func (v *View) Subject() (string, error) {
	return v.fetchTrusted("Subject")
}

// MessageID returns the first Message-ID record's trimmed value,
// regardless of trust: Message-ID is informational only in this flow.
func (v *View) MessageID() (string, bool) {
	vals := v.store.FindAny("Message-ID")
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// ReplyTo collects every Reply-To record's trimmed value,
// trust-agnostic, parsed as addresses. It returns an empty slice (not
// an error) when there are none.
func (v *View) ReplyTo() ([]Address, error) {
	vals := v.store.FindAny("Reply-To")
	if len(vals) == 0 {
		return nil, nil
	}
	addrs := make([]Address, 0, len(vals))
	for _, val := range vals {
		addr, err := v.parser.ParseAddress(val)
		if err != nil {
			return nil, errInvalidAddress("Reply-To")
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// IsAutoSubmitted reports whether any Auto-Submitted record's
// trimmed, lowercased value is "auto-generated" or begins with
// "auto-generated;", trust-agnostic.
func (v *View) IsAutoSubmitted() bool {
	for _, val := range v.store.FindAny("Auto-Submitted") {
		low := strings.ToLower(val)
		if low == "auto-generated" || strings.HasPrefix(low, "auto-generated;") {
			return true
		}
	}
	return false
}

// MissingRequired returns RequiredTrustedNames minus the names that
// have at least one trusted record, uppercased. An empty result means
// the message passes the structural-trust gate.
func (v *View) MissingRequired() []string {
	have := map[string]bool{}
	for _, r := range v.store.Records() {
		if r.Trusted {
			have[strings.ToUpper(r.Name)] = true
		}
	}
	var missing []string
	for _, name := range RequiredTrustedNames {
		if !have[strings.ToUpper(name)] {
			missing = append(missing, strings.ToUpper(name))
		}
	}
	return missing
}
