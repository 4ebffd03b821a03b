package takeoff

import (
	"github.com/tsawler/takeoff/grammar"
	"github.com/tsawler/takeoff/layout"
	"github.com/tsawler/takeoff/runs"
	"github.com/tsawler/takeoff/scale"
	"github.com/tsawler/takeoff/trace"
	"github.com/tsawler/takeoff/vector"
)

// Config holds every tunable of the analysis pipeline.
type Config struct {
	Phrases      layout.PhraseConfig
	Assembly     runs.Config
	Colour       vector.ColourFilter
	Merge        vector.MergeConfig
	StatusPolicy grammar.StatusPolicy

	// OCR enables word recognition on pages without a text layer.
	OCR         bool
	OCRLanguage string
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Phrases:      layout.DefaultPhraseConfig(),
		Assembly:     runs.DefaultConfig(),
		Colour:       vector.DefaultColourFilter(),
		Merge:        vector.DefaultMergeConfig(),
		StatusPolicy: grammar.DefaultStatusPolicy,
		OCRLanguage:  "eng",
	}
}

// Request identifies the page to analyse and any caller overrides.
type Request struct {
	// DrawingRef names the drawing in the result; a random id is used when
	// empty.
	DrawingRef string

	// Page is 1-based; zero means the first page.
	Page int

	Overrides scale.Overrides
}

func (r Request) page() int {
	if r.Page <= 0 {
		return 1
	}
	return r.Page
}

// ExtractOptions holds the fluent configuration of an Extractor.
type ExtractOptions struct {
	request Request
	config  Config
	tracer  trace.Tracer
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		config: DefaultConfig(),
		tracer: trace.Nop,
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o
	palette := make(map[int]string, len(o.config.Assembly.Palette))
	for k, v := range o.config.Assembly.Palette {
		palette[k] = v
	}
	newOpts.config.Assembly.Palette = palette
	return newOpts
}
