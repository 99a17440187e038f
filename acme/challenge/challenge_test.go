package challenge

import (
	"context"
	"strings"
	"testing"

	"crawshaw.io/iox"
)

func TestReadReplyFindsCMSPart(t *testing.T) {
	filer := iox.NewFiler(0)
	defer filer.Shutdown(context.Background())

	raw := strings.Replace(rawReply, "\n", "\r\n", -1)
	reply, err := ReadReply(filer, []byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	defer reply.Close()

	if got, want := string(reply.cms), "fake-cms-der"; got != want {
		t.Errorf("cms = %q, want %q", got, want)
	}
	fields := EnvelopeFields(reply.Envelope)
	var subject string
	for _, f := range fields {
		if strings.EqualFold(f.Name, "Subject") {
			subject = f.Value
		}
	}
	if subject != "Re: ACME: abc123" {
		t.Errorf("envelope Subject = %q", subject)
	}
}

func TestReadReplyNoCMSPart(t *testing.T) {
	filer := iox.NewFiler(0)
	defer filer.Shutdown(context.Background())

	raw := strings.Replace(`From: a@x
To: b@x
Subject: hi
MIME-Version: 1.0
Content-Type: text/plain

hello
`, "\n", "\r\n", -1)
	if _, err := ReadReply(filer, []byte(raw)); err == nil {
		t.Fatal("expected error when no application/pkcs7-mime part is present")
	}
}

func TestKeyAuthorizationNilKey(t *testing.T) {
	_, err := keyAuthorization("", nil)
	if err == nil {
		t.Fatal("expected JWK thumbprint error for a nil public key")
	}
}

const rawReply = `From: a@x
To: b@x
Subject: Re: ACME: abc123
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="BOUNDARY"

--BOUNDARY
Content-Type: application/pkcs7-mime; smime-type=signed-data; name="smime.p7m"
Content-Transfer-Encoding: 7bit

fake-cms-der
--BOUNDARY--
`
