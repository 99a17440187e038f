// Package headertrust reconciles the three header sources an
// email-reply-00 ACME challenge response depends on: the untrusted
// envelope, the signature-protected inner MIME message, and the CMS
// signed attribute that directs how the two relate (RFC 7508).
//
// It produces a Store of header records each tagged trusted or
// untrusted, and a View over that store which hands back From, To and
// Subject only from trusted records; Message-ID, Reply-To and
// Auto-Submitted are read regardless of trust. The package does no
// cryptography, no MIME parsing and no DER decoding: it consumes
// already-enumerated header name/value pairs and an already-decoded
// SecureHeaderFields attribute, and nothing else.
package headertrust
