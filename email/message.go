// Package email is a light-weight set of types for cleaving and
// rebuilding the MIME structure of a single inbound reply. It carries
// none of a mail client's storage concerns (mailboxes, flags, blob
// IDs): a challenge reply is validated once and discarded.
package email

import (
	"io"
)

// Msg is a single email message split into its MIME parts.
type Msg struct {
	Seed        int64  // random seed for rebuilt multipart boundaries
	Headers     Header // top-level (envelope) headers
	Parts       []Part // Parts[i].PartNum == i
	EncodedSize int64  // size of the rebuilt, canonical encoding
}

func (m *Msg) Close() {
	for _, p := range m.Parts {
		if p.Content != nil {
			p.Content.Close()
			p.Content = nil
		}
	}
}

// Part represents a single part of a MIME multipart message.
// A Msg with a single text/plain part is not multipart encoded.
type Part struct {
	PartNum      int
	Name         string
	IsBody       bool
	IsAttachment bool
	ContentType  string
	ContentID    string
	Content      Buffer // decoded part content

	ContentTransferEncoding string // "", "quoted-printable", "base64"
	ContentTransferSize     int64  // transfer-encoded size
	ContentTransferLines    int64  // transfer-encoded line count
}

// Buffer is a seekable, truncatable content store, usually an
// *iox.BufferFile.
type Buffer interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	Size() int64
}
