// Package trace carries pipeline diagnostics out of the analysis core.
//
// The core never logs. Each stage reports what it found as an [Event] to a
// [Tracer] supplied by the caller; binaries adapt a logger or a metrics
// collector to the interface.
package trace

// Stage names used in events.
const (
	StageLoad     = "load"
	StageTokens   = "tokens"
	StageOCR      = "ocr"
	StagePhrases  = "phrases"
	StageGrammar  = "grammar"
	StageScale    = "scale"
	StageColour   = "colour"
	StageRuns     = "runs"
	StageFittings = "fittings"
	StageQuestion = "questions"
	StageDone     = "done"
)

// Event describes the outcome of one pipeline stage.
type Event struct {
	Stage      string
	DrawingRef string
	Counts     map[string]int
	Message    string

	// Err is set for non-fatal failures the stage recovered from.
	Err error
}

// Tracer receives pipeline events. Implementations must be safe for
// concurrent use when shared between drawings.
type Tracer interface {
	Trace(Event)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(Event)

// Trace calls f(e).
func (f TracerFunc) Trace(e Event) {
	f(e)
}

type nop struct{}

func (nop) Trace(Event) {}

// Nop discards every event.
var Nop Tracer = nop{}

type multi []Tracer

func (m multi) Trace(e Event) {
	for _, t := range m {
		t.Trace(e)
	}
}

// Multi returns a tracer that forwards events to each non-nil tracer.
func Multi(tracers ...Tracer) Tracer {
	var m multi
	for _, t := range tracers {
		if t != nil {
			m = append(m, t)
		}
	}
	switch len(m) {
	case 0:
		return Nop
	case 1:
		return m[0]
	}
	return m
}

// OrNop returns t, or Nop when t is nil.
func OrNop(t Tracer) Tracer {
	if t == nil {
		return Nop
	}
	return t
}
