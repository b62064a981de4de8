package logging

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// zerologPublisher forwards structured events to a zerolog logger.
type zerologPublisher struct {
	logger zerolog.Logger
}

// NewZerologPublisher builds a publisher writing JSON lines to w.
// A nil writer defaults to stderr.
func NewZerologPublisher(w io.Writer, service string) Publisher {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(w).With().
		Timestamp().
		Str("service", service).
		Logger()
	return &zerologPublisher{logger: logger}
}

func (p *zerologPublisher) Publish(_ context.Context, event Event) {
	if p == nil {
		return
	}
	evt := p.logger.WithLevel(zerologLevel(event.Severity))
	evt = evt.
		Str("event", string(event.Type)).
		Uint64("tick", event.Tick).
		Str("actor_id", event.Actor.ID).
		Str("actor_kind", string(event.Actor.Kind))
	if event.Category != "" {
		evt = evt.Str("category", event.Category)
	}
	if event.Payload != nil {
		evt = evt.Interface("payload", event.Payload)
	}
	if len(event.Extra) > 0 {
		evt = evt.Fields(event.Extra)
	}
	evt.Msg(string(event.Type))
}

func zerologLevel(severity Severity) zerolog.Level {
	switch severity {
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityWarn:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
