package cms

import (
	"encoding/asn1"
	"fmt"

	"validate.email/email/headertrust"
)

// SecureHeaderFieldsOID is the RFC 7508 id-aa-secureHeaderFields
// attribute OID.
var SecureHeaderFieldsOID = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 55}

// contentInfoDER, signedDataDER and signerInfoDER are just enough of
// RFC 5652's CMS ASN.1 to reach a SignerInfo's authenticated
// attributes. Fields this package never inspects are decoded into
// asn1.RawValue so their internal grammar (which varies by CHOICE,
// e.g. SignerIdentifier) never has to be modeled.
type contentInfoDER struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,tag:0"`
}

type signedDataDER struct {
	Version          int
	DigestAlgorithms asn1.RawValue `asn1:"set"`
	EncapContentInfo asn1.RawValue
	Certificates     asn1.RawValue   `asn1:"optional,tag:0"`
	CRLs             asn1.RawValue   `asn1:"optional,tag:1"`
	SignerInfos      []signerInfoDER `asn1:"set"`
}

type signerInfoDER struct {
	Version            int
	SignerIdentifier   asn1.RawValue
	DigestAlgorithm    asn1.RawValue
	SignedAttrs        []attributeDER `asn1:"optional,tag:0"`
	SignatureAlgorithm asn1.RawValue
	Signature          asn1.RawValue
	UnsignedAttrs      asn1.RawValue `asn1:"optional,tag:1"`
}

type attributeDER struct {
	Type   asn1.ObjectIdentifier
	Values asn1.RawValue
}

type directiveTripleDER struct {
	HeaderName  asn1.RawValue
	HeaderValue asn1.RawValue
	Status      int `asn1:"optional,default:0"`
}

// SignerSecureHeaderFields decodes the SecureHeaderFields signed
// attribute (if present) off the Nth SignerInfo of a CMS SignedData
// envelope given in DER. It returns (nil, nil) when the signer
// carries no such attribute: ImportSignatureDirectives treats that as
// a documented no-op.
func SignerSecureHeaderFields(der []byte, signerIndex int) (*headertrust.SecureHeaderFields, error) {
	var ci contentInfoDER
	if _, err := asn1.Unmarshal(der, &ci); err != nil {
		return nil, fmt.Errorf("cms: decoding ContentInfo: %w", err)
	}
	var sd signedDataDER
	if _, err := asn1.Unmarshal(ci.Content.Bytes, &sd); err != nil {
		return nil, fmt.Errorf("cms: decoding SignedData: %w", err)
	}
	if signerIndex < 0 || signerIndex >= len(sd.SignerInfos) {
		return nil, fmt.Errorf("cms: signer index %d out of range (%d signers)", signerIndex, len(sd.SignerInfos))
	}

	for _, a := range sd.SignerInfos[signerIndex].SignedAttrs {
		if !a.Type.Equal(SecureHeaderFieldsOID) {
			continue
		}
		return decodeSecureHeaderFields(a.Values)
	}
	return nil, nil
}

// decodeSecureHeaderFields decodes the attribute's SET OF AttributeValue
// (values is that SET's raw TLV) into a headertrust.SecureHeaderFields.
// Per spec, the attribute carries exactly one AttributeValue, itself a
// SET containing zero or one ENUMERATED canonicalization algorithm and
// zero or more SEQUENCEs of directive triples.
func decodeSecureHeaderFields(values asn1.RawValue) (*headertrust.SecureHeaderFields, error) {
	var attrValues []asn1.RawValue
	if _, err := asn1.UnmarshalWithParams(values.FullBytes, &attrValues, "set"); err != nil {
		return nil, fmt.Errorf("cms: decoding attribute values: %w", err)
	}
	if len(attrValues) != 1 {
		return nil, fmt.Errorf("cms: secureHeaderFields attribute must carry exactly one value, got %d", len(attrValues))
	}

	var elems []asn1.RawValue
	if _, err := asn1.UnmarshalWithParams(attrValues[0].FullBytes, &elems, "set"); err != nil {
		return nil, fmt.Errorf("cms: decoding secureHeaderFields value: %w", err)
	}

	out := &headertrust.SecureHeaderFields{}
	for _, elem := range elems {
		switch elem.Tag {
		case asn1.TagEnum:
			var n asn1.Enumerated
			if _, err := asn1.Unmarshal(elem.FullBytes, &n); err != nil {
				return nil, fmt.Errorf("cms: decoding canonicalization algorithm: %w", err)
			}
			alg := int(n)
			out.Algorithm = &alg
		case asn1.TagSequence:
			var triples []directiveTripleDER
			if _, err := asn1.Unmarshal(elem.FullBytes, &triples); err != nil {
				return nil, fmt.Errorf("cms: decoding secured header field group: %w", err)
			}
			for _, t := range triples {
				out.Directives = append(out.Directives, headertrust.SignatureDirective{
					FieldName:  string(t.HeaderName.Bytes),
					FieldValue: string(t.HeaderValue.Bytes),
					Status:     headertrust.DirectiveStatus(t.Status),
				})
			}
		default:
			return nil, fmt.Errorf("cms: unexpected element in secureHeaderFields value (tag %d)", elem.Tag)
		}
	}
	return out, nil
}
