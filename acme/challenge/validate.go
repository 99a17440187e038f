package challenge

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"crawshaw.io/iox"
	"validate.email/cms"
	"validate.email/email/dkim"
	"validate.email/email/headertrust"
)

// CompatibilityMode selects which of the two inner-header import
// modes a reply is reconciled under, per spec.md §2's
// import_trusted_strict/import_trusted_relaxed choice.
type CompatibilityMode int

const (
	// Strict requires the inner message to reproduce the envelope
	// byte-for-byte.
	Strict CompatibilityMode = iota
	// Relaxed tolerates cosmetic differences between envelope and
	// inner header values.
	Relaxed
)

// Result is the outcome of validating one reply: the trusted view, and
// an operational, non-authoritative DKIM check against the raw
// message. DKIMErr is never consulted by ConfirmsKeyAuthorization; the
// CMS signature is the sole trust source this package acts on.
type Result struct {
	View *headertrust.View

	// EnvelopeSize is the canonical encoded size msgcleaver computed
	// while rebuilding the envelope, for operators sizing request
	// logs; it has no bearing on trust.
	EnvelopeSize int64

	DKIMErr error
}

// Validate runs the full email-reply-00 reconciliation pipeline over a
// raw reply message: cleave the envelope, verify its CMS SignedData
// body, reconcile envelope/inner/signature-directive headers, and hand
// back a read-only trusted view. Any verification or reconciliation
// failure causes the reply to be rejected outright; the caller must
// not call Accept on the ACME challenge unless this succeeds.
func Validate(ctx context.Context, filer *iox.Filer, raw []byte, mode CompatibilityMode) (*Result, error) {
	reply, err := ReadReply(filer, raw)
	if err != nil {
		return nil, err
	}
	defer reply.Close()

	p7, err := cms.VerifySignedMessage(reply.cms)
	if err != nil {
		return nil, fmt.Errorf("challenge: %w", err)
	}

	inner, err := innerFields(p7.Content)
	if err != nil {
		return nil, err
	}

	directives, err := cms.SignerSecureHeaderFields(reply.cms, 0)
	if err != nil {
		return nil, fmt.Errorf("challenge: %w", err)
	}

	rec := headertrust.NewReconciler()
	rec.ImportUntrusted(EnvelopeFields(reply.Envelope))
	switch mode {
	case Strict:
		if err := rec.ImportTrustedStrict(inner); err != nil {
			return nil, err
		}
	case Relaxed:
		rec.ImportTrustedRelaxed(inner)
	default:
		return nil, fmt.Errorf("challenge: unknown compatibility mode %d", mode)
	}
	if err := rec.ImportSignatureDirectives(directives); err != nil {
		return nil, err
	}

	view := rec.View(addressParser)
	if missing := view.MissingRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("challenge: message missing required trusted headers: %s", strings.Join(missing, ", "))
	}

	// DKIM is not part of the CMS trust path; it is logged alongside the
	// CMS-trusted view for operational triage only, never consulted by
	// ConfirmsKeyAuthorization.
	dkimErr := (&dkim.Verifier{}).Verify(ctx, bytes.NewReader(raw))

	return &Result{
		View:         view,
		EnvelopeSize: reply.Envelope.EncodedSize,
		DKIMErr:      dkimErr,
	}, nil
}

// ConfirmsKeyAuthorization reports whether the trusted Subject contains
// the given string. The callers in this module pass the full key
// authorization (token "." account key thumbprint).
func (res *Result) ConfirmsKeyAuthorization(tokenPart2 string) (bool, error) {
	subject, err := res.View.Subject()
	if err != nil {
		return false, err
	}
	return strings.Contains(subject, tokenPart2), nil
}
