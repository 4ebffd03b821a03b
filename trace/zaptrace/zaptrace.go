// Package zaptrace writes pipeline events to a zap logger.
package zaptrace

import (
	"sort"

	"go.uber.org/zap"

	"github.com/tsawler/takeoff/trace"
)

// Tracer logs stage events at Debug and recovered failures at Warn.
type Tracer struct {
	log *zap.Logger
}

// New returns a Tracer writing to log. A nil logger discards events.
func New(log *zap.Logger) *Tracer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracer{log: log.Named("pipeline")}
}

// Trace implements trace.Tracer.
func (t *Tracer) Trace(e trace.Event) {
	fields := make([]zap.Field, 0, len(e.Counts)+3)
	fields = append(fields, zap.String("stage", e.Stage))
	if e.DrawingRef != "" {
		fields = append(fields, zap.String("drawing", e.DrawingRef))
	}

	keys := make([]string, 0, len(e.Counts))
	for k := range e.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Int(k, e.Counts[k]))
	}

	msg := e.Message
	if msg == "" {
		msg = e.Stage
	}

	if e.Err != nil {
		t.log.Warn(msg, append(fields, zap.Error(e.Err))...)
		return
	}
	t.log.Debug(msg, fields...)
}

var _ trace.Tracer = (*Tracer)(nil)
