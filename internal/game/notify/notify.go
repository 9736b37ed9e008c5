// Package notify carries player-facing messages out of the simulation core.
// The core never renders anything; it hands text to a Sink.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Kind classifies a message for presentation.
type Kind int

const (
	Neutral Kind = iota
	Good
	Bad
	Warning
	Info
)

// String returns a lowercase label for the kind.
func (k Kind) String() string {
	switch k {
	case Good:
		return "good"
	case Bad:
		return "bad"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "neutral"
	}
}

// Sink receives messages addressed to a single character.
type Sink interface {
	// Add delivers text with the given presentation kind.
	Add(kind Kind, text string)
}

// Discard is a Sink that drops every message.
var Discard Sink = discard{}

type discard struct{}

func (discard) Add(Kind, string) {}

// Message is one delivered message.
type Message struct {
	Kind Kind
	Text string
}

// Log is a Sink that records messages in delivery order.
// It is safe for concurrent use.
type Log struct {
	mu       sync.Mutex
	messages []Message
}

// Add appends a message.
func (l *Log) Add(kind Kind, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, Message{Kind: kind, Text: text})
}

// Messages returns a copy of every recorded message.
//
// Postcondition: mutating the returned slice does not affect the Log.
func (l *Log) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Texts returns the text of every recorded message.
func (l *Log) Texts() []string {
	msgs := l.Messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

// ZapSink writes messages to a structured logger at debug level.
type ZapSink struct {
	logger *zap.Logger
	owner  string
}

// NewZapSink returns a Sink that logs messages for owner.
//
// Precondition: logger must be non-nil.
func NewZapSink(logger *zap.Logger, owner string) *ZapSink {
	return &ZapSink{logger: logger, owner: owner}
}

// Add logs the message.
func (z *ZapSink) Add(kind Kind, text string) {
	z.logger.Debug("message",
		zap.String("owner", z.owner),
		zap.Stringer("kind", kind),
		zap.String("text", text),
	)
}
