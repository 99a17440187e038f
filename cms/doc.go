// Package cms adapts a CMS/PKCS#7 SignedData envelope to the inputs
// email/headertrust needs: a verified signer (via go.mozilla.org/pkcs7,
// the cryptographic-verification collaborator the core explicitly
// leaves external) and the RFC 7508 SecureHeaderFields signed
// attribute (decoded here, since pkcs7 has no notion of this
// non-standard attribute).
package cms
