package scribe

import (
	"context"

	"github.com/zoobzio/pipz"
)

// Internal identities for encoder.
var (
	writeID          = pipz.NewIdentity("scribe:write", "Delivers encoded bytes to the handler")
	encodePipelineID = pipz.NewIdentity("scribe:encoder", "Encoder pipeline")
)

// Encoder serializes records to compact JSON and delivers the bytes to the
// handler it was constructed with. When a mapping template is configured the
// encoder serializes the template's output tree instead of the record's
// native shape; the two paths are mutually exclusive per instance.
type Encoder struct {
	mappingSpec any
	mapping     *Mapping
	pipeline    *pipz.Pipeline[[]byte]
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithEncoderMapping reshapes encode output through a declarative mapping
// template (see CompileMapping). The template is compiled once at
// construction and reused read-only across every Encode call.
func WithEncoderMapping(spec any) EncoderOption {
	return func(e *Encoder) {
		e.mappingSpec = spec
	}
}

// NewEncoder creates an Encoder that delivers serialized bytes to handler.
// Pipeline options wrap delivery with reliability features. A mapping
// template that fails to compile fails construction.
func NewEncoder(handler EncodeHandler, pipelineOpts []Option[[]byte], opts ...EncoderOption) (*Encoder, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}

	if e.mappingSpec != nil {
		mapping, err := CompileMapping(e.mappingSpec)
		if err != nil {
			return nil, err
		}
		e.mapping = mapping
	}

	// Build pipeline: start with terminal, wrap with options
	chain := newWriteTerminal(handler)
	for _, opt := range pipelineOpts {
		chain = opt(chain)
	}
	e.pipeline = pipz.NewPipeline(encodePipelineID, chain)

	return e, nil
}

// newWriteTerminal creates the terminal operation that hands bytes to the handler.
func newWriteTerminal(handler EncodeHandler) pipz.Chainable[[]byte] {
	return pipz.Apply(writeID, func(ctx context.Context, data []byte) ([]byte, error) {
		return data, handler(ctx, data)
	})
}

// Encode serializes one record to compact JSON (no indentation, no line
// terminators) and delivers the bytes to the handler. Serialization errors
// surface to the caller; they are not expected for well-formed records.
func (e *Encoder) Encode(ctx context.Context, rec Record) error {
	var doc any = map[string]any(rec)
	if e.mapping != nil {
		doc = e.mapping.Build(rec)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = e.pipeline.Process(ctx, data)
	return err
}

// Close releases pipeline resources.
func (e *Encoder) Close() error {
	if e.pipeline != nil {
		return e.pipeline.Close()
	}
	return nil
}
