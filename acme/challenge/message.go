package challenge

import (
	"bufio"
	"bytes"
	"fmt"
	"mime"
	"strings"

	"crawshaw.io/iox"
	"validate.email/email"
	"validate.email/email/headertrust"
	"validate.email/email/msgcleaver"
	"validate.email/third_party/imf"
)

// Reply is an inbound email-reply-00 challenge response, split into
// its untrusted envelope and the part carrying the CMS SignedData
// body. It owns the temp-file backed buffers msgcleaver allocates and
// must be closed by the caller.
type Reply struct {
	Envelope *email.Msg
	cms      []byte
}

// Close releases the envelope's buffered part content.
func (r *Reply) Close() {
	if r.Envelope != nil {
		r.Envelope.Close()
	}
}

// smimeContentTypes are the Content-Type values an email-reply-00
// response's signed body is delivered under.
var smimeContentTypes = map[string]bool{
	"application/pkcs7-mime":   true,
	"application/x-pkcs7-mime": true,
}

// ReadReply cleaves a raw reply message into its envelope headers and
// CMS SignedData body. filer provides the temp-file backed buffers
// msgcleaver uses while splitting MIME parts.
func ReadReply(filer *iox.Filer, raw []byte) (*Reply, error) {
	msg, err := msgcleaver.Cleave(filer, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("challenge: cleaving reply: %w", err)
	}

	for i := range msg.Parts {
		p := &msg.Parts[i]
		mediaType, _, err := mime.ParseMediaType(p.ContentType)
		if err != nil {
			mediaType = p.ContentType
		}
		if !smimeContentTypes[strings.ToLower(mediaType)] {
			continue
		}
		der, err := readAll(p)
		if err != nil {
			msg.Close()
			return nil, fmt.Errorf("challenge: reading CMS part: %w", err)
		}
		return &Reply{Envelope: msg, cms: der}, nil
	}

	msg.Close()
	return nil, fmt.Errorf("challenge: no application/pkcs7-mime part found")
}

func readAll(p *email.Part) ([]byte, error) {
	if _, err := p.Content.Seek(0, 0); err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(p.Content); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EnvelopeFields converts the outer message's headers into the
// untrusted Field enumeration headertrust.Reconciler.ImportUntrusted
// expects.
func EnvelopeFields(msg *email.Msg) []headertrust.Field {
	fields := make([]headertrust.Field, 0, len(msg.Headers.Entries))
	for _, e := range msg.Headers.Entries {
		fields = append(fields, headertrust.Field{Name: string(e.Key), Value: string(e.Value)})
	}
	return fields
}

// innerFields parses the CMS envelope's encapsulated content as a MIME
// header block and converts it into trusted Field candidates. The
// encapsulated content is the signed inner message per spec.md §1;
// only its top-level header block matters here, since the
// reconciliation core never inspects a body.
func innerFields(content []byte) ([]headertrust.Field, error) {
	r := imf.NewReader(bufio.NewReader(bytes.NewReader(content)))
	hdr, err := r.ReadMIMEHeader()
	if err != nil {
		return nil, fmt.Errorf("challenge: parsing inner message headers: %w", err)
	}
	fields := make([]headertrust.Field, 0, len(hdr.Entries))
	for _, e := range hdr.Entries {
		fields = append(fields, headertrust.Field{Name: string(e.Key), Value: string(e.Value)})
	}
	return fields, nil
}
