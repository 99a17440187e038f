package cms

import (
	"fmt"

	"go.mozilla.org/pkcs7"
)

// VerifySignedMessage parses and cryptographically verifies an opaque
// CMS SignedData envelope: the application/pkcs7-mime;
// smime-type=signed-data part of an S/MIME reply, which carries the
// original message as the SignedData's own encapsulated content rather
// than alongside it as a cleartext multipart/signed body. This is the
// one place this module touches a cryptographic signature;
// email/headertrust never does.
func VerifySignedMessage(der []byte) (*pkcs7.PKCS7, error) {
	p7, err := pkcs7.Parse(der)
	if err != nil {
		return nil, fmt.Errorf("cms: parsing CMS SignedData: %w", err)
	}
	if err := p7.Verify(); err != nil {
		return nil, fmt.Errorf("cms: signature verification failed: %w", err)
	}
	return p7, nil
}
