// Package models contains the data types and constants for bananachat
// sessions, messages and assistants.
package models

import (
	"fmt"
	"time"
)

// Message roles
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// InlineData holds base64-encoded binary content with its MIME type.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// MessagePart is a tagged union: exactly one of Text or InlineData is set.
// The JSON shape matches the on-disk format of the web client, so existing
// session files load without re-encoding.
type MessagePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// TextPart creates a text part.
func TextPart(text string) MessagePart {
	return MessagePart{Text: text}
}

// ImagePart creates an inline-data part.
func ImagePart(mimeType, data string) MessagePart {
	return MessagePart{InlineData: &InlineData{MIMEType: mimeType, Data: data}}
}

// IsImage reports whether the part carries inline binary data.
func (p MessagePart) IsImage() bool {
	return p.InlineData != nil && p.InlineData.Data != ""
}

// Message is a single entry in a session's history. Messages are immutable
// once appended; edits and regenerations always produce a new history.
type Message struct {
	ID        string        `json:"id"`
	Role      string        `json:"role"`
	Parts     []MessagePart `json:"parts"`
	Timestamp int64         `json:"timestamp"` // Unix milliseconds
}

// FirstText returns the text of the first text part, or "".
func (m *Message) FirstText() string {
	for _, p := range m.Parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

// AttachmentParts extracts the message's inline-data parts as attachments,
// used by the edit and regenerate flows to carry images forward unchanged.
func (m *Message) AttachmentParts() []Attachment {
	var atts []Attachment
	for _, p := range m.Parts {
		if p.IsImage() {
			atts = append(atts, Attachment{
				MIMEType: p.InlineData.MIMEType,
				Data:     p.InlineData.Data,
			})
		}
	}
	return atts
}

// ImageCount returns the number of inline-data parts.
func (m *Message) ImageCount() int {
	n := 0
	for _, p := range m.Parts {
		if p.IsImage() {
			n++
		}
	}
	return n
}

// Attachment is transient compose-time data. It exists only while a turn is
// being prepared and becomes an inline-data part when the turn is sent.
type Attachment struct {
	MIMEType   string
	Data       string // base64-encoded bytes
	PreviewURL string
}

// Part converts the attachment into an inline-data message part.
func (a Attachment) Part() MessagePart {
	return ImagePart(a.MIMEType, a.Data)
}

// NewMessageID returns a time-based message id, unique within a session.
func NewMessageID() string {
	return fmt.Sprintf("msg-%d", time.Now().UnixNano())
}
