package headertrust

// phase is tracked only for diagnostics; the state machine in the
// design notes is advisory, not enforced, per the open question on
// out-of-order imports.
type phase int

const (
	phaseEmpty phase = iota
	phaseEnvelopeLoaded
	phaseInnerLoaded
	phaseDirectivesApplied
)

// Reconciler merges three sources of header information into a Store,
// in the fixed order described by the package: envelope, then inner
// message, then signature directives. It owns the Store exclusively
// during import; call View once all imports are done.
type Reconciler struct {
	store Store
	phase phase
}

// NewReconciler returns a Reconciler with an empty store.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// ImportUntrusted clears the store and loads the envelope's headers,
// each marked untrusted. Ignored names are dropped silently.
func (r *Reconciler) ImportUntrusted(fields []Field) {
	r.store = Store{}
	for _, f := range fields {
		if isIgnoredName(f.Name) {
			continue
		}
		r.store.Append(f.Name, f.Value, false)
	}
	r.phase = phaseEnvelopeLoaded
}

// ImportTrustedStrict imports the inner message's headers in strict
// compatibility mode: every header must reproduce an existing record
// byte-for-byte, or the import fails with SecuredHeaderMismatch. Every
// matching record is marked trusted, not just the first.
func (r *Reconciler) ImportTrustedStrict(fields []Field) error {
	for _, f := range fields {
		if isIgnoredName(f.Name) {
			continue
		}
		n := r.store.MarkTrustedWhere(And(NameEquals(f.Name, false), ValueEquals(f.Value, false)))
		if n == 0 {
			return errMismatch(f.Name)
		}
	}
	r.phase = phaseInnerLoaded
	return nil
}

// ImportTrustedRelaxed imports the inner message's headers in relaxed
// compatibility mode: any untrusted record with the same name
// (case-insensitive) is discarded and replaced with a trusted record
// carrying the inner message's value. Already-trusted records from an
// earlier import are never overwritten.
func (r *Reconciler) ImportTrustedRelaxed(fields []Field) {
	for _, f := range fields {
		if isIgnoredName(f.Name) {
			continue
		}
		r.store.RemoveWhere(func(rec Record) bool {
			return !rec.Trusted && nameEqual(rec.Name, f.Name, true)
		})
		r.store.Append(f.Name, f.Value, true)
	}
	r.phase = phaseInnerLoaded
}

// ImportSignatureDirectives applies an RFC 7508 SecureHeaderFields
// attribute. A nil attribute is a no-op. Processing is two-pass:
// first the canonicalization algorithm is established, then every
// directive is applied using that algorithm's equality precision.
func (r *Reconciler) ImportSignatureDirectives(attr *SecureHeaderFields) error {
	if attr == nil {
		return nil
	}

	relaxed := false
	if attr.Algorithm != nil {
		switch CanonAlg(*attr.Algorithm) {
		case CanonSimple:
			relaxed = false
		case CanonRelaxed:
			relaxed = true
		default:
			return errUnknownAlgorithm(*attr.Algorithm)
		}
	}

	for _, d := range attr.Directives {
		switch d.Status {
		case Duplicated:
			n := r.store.MarkTrustedWhere(And(NameEquals(d.FieldName, relaxed), ValueEquals(d.FieldValue, relaxed)))
			if n == 0 {
				return errDirectiveUnmatched(Duplicated, d.FieldName)
			}
		case Deleted:
			n := r.store.RemoveWhere(And(NameEquals(d.FieldName, relaxed), ValueEquals(d.FieldValue, relaxed)))
			if n == 0 {
				return errDirectiveUnmatched(Deleted, d.FieldName)
			}
		case Modified:
			n := r.store.RemoveWhere(NameEquals(d.FieldName, relaxed))
			if n == 0 {
				return errDirectiveUnmatched(Modified, d.FieldName)
			}
			r.store.Append(d.FieldName, d.FieldValue, true)
		default:
			return errUnknownFieldStatus(int(d.Status))
		}
	}

	r.phase = phaseDirectivesApplied
	return nil
}

// View returns a read-only, validating view over the reconciled
// store. It may be called at any point; callers normally call it only
// after all applicable imports have completed.
func (r *Reconciler) View(parser AddressParser) *View {
	return &View{store: &r.store, parser: parser}
}
