package challenge

import (
	"context"
	"crypto"
	"fmt"

	"crawshaw.io/iox"
	"golang.org/x/crypto/acme"
)

// EmailReplyType is the ACME challenge type this package answers, per
// the email-reply-00 challenge family referenced by spec.md §1.
const EmailReplyType = "email-reply-00"

// Responder drives one email-reply-00 authorization to completion: it
// fetches the pending challenge, computes the RFC 8555 key
// authorization the reply's signed Subject must confirm, validates an
// inbound reply against it, and tells the ACME server to accept the
// challenge. Everything JOSE/HTTP related is delegated to
// golang.org/x/crypto/acme.Client, the low-level client that
// golang.org/x/crypto/acme/autocert is built on; Responder never
// re-implements ACME protocol state.
type Responder struct {
	Client *acme.Client
	Filer  *iox.Filer

	// Mode selects strict or relaxed inner-header reconciliation for
	// every reply this Responder validates.
	Mode CompatibilityMode
}

// Challenge fetches an authorization's pending email-reply-00
// challenge and computes the key authorization the reply must confirm.
func (r *Responder) Challenge(ctx context.Context, authzURL string) (*acme.Challenge, string, error) {
	authz, err := r.Client.GetAuthorization(ctx, authzURL)
	if err != nil {
		return nil, "", fmt.Errorf("challenge: fetching authorization: %w", err)
	}
	for _, chal := range authz.Challenges {
		if chal.Type != EmailReplyType {
			continue
		}
		keyAuth, err := keyAuthorization(chal.Token, r.Client.Key.Public())
		if err != nil {
			return nil, "", err
		}
		return chal, keyAuth, nil
	}
	return nil, "", fmt.Errorf("challenge: authorization %s has no %s challenge", authzURL, EmailReplyType)
}

// keyAuthorization computes the RFC 8555 §8.1 key authorization for a
// challenge token.
func keyAuthorization(token string, accountKey crypto.PublicKey) (string, error) {
	thumbprint, err := acme.JWKThumbprint(accountKey)
	if err != nil {
		return "", fmt.Errorf("challenge: computing JWK thumbprint: %w", err)
	}
	return token + "." + thumbprint, nil
}

// Accept validates a raw inbound reply against keyAuth and, only on
// success, tells the ACME server to accept the challenge. Any
// reconciliation failure aborts before the server is contacted.
func (r *Responder) Accept(ctx context.Context, raw []byte, chal *acme.Challenge, keyAuth string) (*Result, error) {
	res, err := Validate(ctx, r.Filer, raw, r.Mode)
	if err != nil {
		return nil, err
	}
	ok, err := res.ConfirmsKeyAuthorization(keyAuth)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("challenge: reply Subject does not confirm key authorization")
	}
	if _, err := r.Client.Accept(ctx, chal); err != nil {
		return nil, fmt.Errorf("challenge: accepting challenge: %w", err)
	}
	return res, nil
}
