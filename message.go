package sift

import (
	"bytes"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// Summary holds the few header fields worth keeping in the audit trail.
type Summary struct {
	MessageID string
	Subject   string
}

// Summarize parses just enough of the message header for hooks and logging.
// Broken or exotic headers must not stop the pipeline, so parse failures
// degrade to an empty summary instead of an error.
func Summarize(raw []byte) *Summary {
	s := &Summary{}
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return s
	}
	h := mail.Header{Header: entity.Header}
	if v, err := h.Subject(); err == nil {
		s.Subject = v
	}
	if v, err := h.MessageID(); err == nil {
		s.MessageID = v
	}
	return s
}
