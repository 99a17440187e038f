// Command emailreplyvalidate validates an inbound ACME email-reply-00
// challenge response against an account key and, optionally, accepts
// the corresponding authorization with an ACME server.
package main

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"golang.org/x/crypto/acme"

	"crawshaw.io/iox"
	"validate.email/acme/challenge"
)

func main() {
	log.SetFlags(0)

	flagAccountKey := flag.String("account_key", "", "PEM-encoded EC private key for the ACME account")
	flagMessage := flag.String("message", "", "path to the raw inbound reply message (.eml)")
	flagMode := flag.String("mode", "relaxed", `inner-header compatibility mode: "strict" or "relaxed"`)
	flagToken := flag.String("token", "", "challenge token issued by the ACME server")
	flagDirectoryURL := flag.String("directory_url", "", "ACME directory URL; if set, the authorization is accepted after a successful validation")
	flagAuthzURL := flag.String("authz_url", "", "authorization URL to accept, used with -directory_url")

	flag.Parse()

	if *flagAccountKey == "" || *flagMessage == "" || *flagToken == "" {
		fmt.Fprintln(os.Stderr, "usage: emailreplyvalidate -account_key=... -message=... -token=...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	mode, err := parseMode(*flagMode)
	if err != nil {
		log.Fatal(err)
	}

	accountKey, err := loadAccountKey(*flagAccountKey)
	if err != nil {
		log.Fatalf("emailreplyvalidate: %v", err)
	}

	raw, err := ioutil.ReadFile(*flagMessage)
	if err != nil {
		log.Fatalf("emailreplyvalidate: %v", err)
	}

	ctx := context.Background()
	filer := iox.NewFiler(0)
	defer filer.Shutdown(ctx)

	client := &acme.Client{Key: accountKey}
	responder := &challenge.Responder{Client: client, Filer: filer, Mode: mode}

	keyAuth, err := computeKeyAuthorization(*flagToken, accountKey.Public())
	if err != nil {
		log.Fatalf("emailreplyvalidate: %v", err)
	}

	res, err := challenge.Validate(ctx, filer, raw, mode)
	if err != nil {
		log.Fatalf("emailreplyvalidate: reply rejected: %v", err)
	}
	confirms, err := res.ConfirmsKeyAuthorization(keyAuth)
	if err != nil {
		log.Fatalf("emailreplyvalidate: %v", err)
	}
	if !confirms {
		log.Fatal("emailreplyvalidate: reply rejected: Subject does not confirm key authorization")
	}
	log.Printf("emailreplyvalidate: reply confirms key authorization %q (envelope %d bytes rebuilt)", keyAuth, res.EnvelopeSize)
	if res.DKIMErr != nil {
		log.Printf("emailreplyvalidate: note: DKIM check failed (non-authoritative): %v", res.DKIMErr)
	} else {
		log.Printf("emailreplyvalidate: note: DKIM check passed (non-authoritative)")
	}

	if *flagDirectoryURL == "" {
		return
	}
	if *flagAuthzURL == "" {
		log.Fatal("emailreplyvalidate: -authz_url is required with -directory_url")
	}
	client.DirectoryURL = *flagDirectoryURL
	chal, _, err := responder.Challenge(ctx, *flagAuthzURL)
	if err != nil {
		log.Fatalf("emailreplyvalidate: %v", err)
	}
	if _, err := responder.Accept(ctx, raw, chal, keyAuth); err != nil {
		log.Fatalf("emailreplyvalidate: %v", err)
	}
	log.Printf("emailreplyvalidate: accepted authorization %s", *flagAuthzURL)
}

func parseMode(s string) (challenge.CompatibilityMode, error) {
	switch s {
	case "strict":
		return challenge.Strict, nil
	case "relaxed":
		return challenge.Relaxed, nil
	default:
		return 0, fmt.Errorf("unknown -mode %q, want \"strict\" or \"relaxed\"", s)
	}
}

func loadAccountKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading account key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing EC private key: %w", err)
	}
	return key, nil
}

func computeKeyAuthorization(token string, pub crypto.PublicKey) (string, error) {
	thumbprint, err := acme.JWKThumbprint(pub)
	if err != nil {
		return "", fmt.Errorf("computing JWK thumbprint: %w", err)
	}
	return token + "." + thumbprint, nil
}
