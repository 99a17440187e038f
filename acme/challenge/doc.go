// Package challenge drives the ACME email-reply-00 challenge: given a
// raw envelope (untrusted header bytes) and its CMS/PKCS#7 SignedData
// reply body, it verifies the signature, parses the inner MIME message
// and the envelope, reconciles both into email/headertrust, and hands
// back a trusted headertrust.View plus the token fields the challenge
// needs.
//
// Everything cryptographic or syntactic lives in collaborators: cms
// for signature verification and the RFC 7508 signed attribute,
// third_party/imf for RFC 5322 header and address parsing,
// email/msgcleaver for MIME part splitting. This package only wires
// them together and applies the email-reply-00 policy on top of the
// trusted view.
package challenge
