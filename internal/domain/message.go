package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	startText       = "Start"
	updatePrefix    = "Update "
	processedPrefix = "Processed: "
)

// MessageKind discriminates the variants of Message.
type MessageKind int

const (
	// KindText is any client payload that is neither Start nor a canonical
	// Update. It is echoed verbatim.
	KindText MessageKind = iota
	KindStart
	KindUpdate
	KindProcessed
)

// String returns a human-readable representation of the kind.
func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindStart:
		return "start"
	case KindUpdate:
		return "update"
	case KindProcessed:
		return "processed"
	default:
		return "unknown"
	}
}

// Message is one payload exchanged on a streaming session.
type Message struct {
	Kind MessageKind

	// Index is the zero-based iteration of an Update.
	Index int

	// Text is the raw payload of a Text message, or the client payload a
	// Processed message acknowledges.
	Text string
}

// Start returns the session-opening sentinel.
func Start() Message { return Message{Kind: KindStart} }

// Update returns the update for iteration i.
func Update(i int) Message { return Message{Kind: KindUpdate, Index: i} }

// Text wraps an opaque client payload.
func Text(raw string) Message { return Message{Kind: KindText, Text: raw} }

// Processed returns the acknowledgement of a client payload.
func Processed(payload string) Message { return Message{Kind: KindProcessed, Text: payload} }

// Acknowledge builds the reply to a client message.
func Acknowledge(m Message) Message {
	return Processed(FormatMessage(m))
}

// FormatMessage renders m in its wire form.
func FormatMessage(m Message) string {
	switch m.Kind {
	case KindStart:
		return startText
	case KindUpdate:
		return updatePrefix + strconv.Itoa(m.Index)
	case KindProcessed:
		return processedPrefix + m.Text
	default:
		return m.Text
	}
}

// String implements fmt.Stringer using the wire form.
func (m Message) String() string {
	return FormatMessage(m)
}

// ParseClientMessage classifies a client payload. It never fails: payloads
// that are not exactly "Start" or a canonical "Update {i}" become Text, so
// FormatMessage(ParseClientMessage(s)) == s for every s.
func ParseClientMessage(s string) Message {
	if s == startText {
		return Start()
	}
	if idx, ok := parseUpdateIndex(s); ok {
		return Update(idx)
	}
	return Text(s)
}

// ParseServerMessage decodes a server reply.
func ParseServerMessage(s string) (Message, error) {
	payload, ok := strings.CutPrefix(s, processedPrefix)
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrMalformedMessage, s)
	}
	return Processed(payload), nil
}

func parseUpdateIndex(s string) (int, bool) {
	digits, ok := strings.CutPrefix(s, updatePrefix)
	if !ok || digits == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 || strconv.Itoa(idx) != digits {
		return 0, false
	}
	return idx, true
}
