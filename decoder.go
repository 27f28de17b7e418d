package scribe

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Internal identities for decoder.
var (
	emitID           = pipz.NewIdentity("scribe:emit", "Delivers records to the handler")
	decodePipelineID = pipz.NewIdentity("scribe:decoder", "Decoder pipeline")
)

// Decoder turns raw byte payloads into records, delivering each to the
// handler it was constructed with. Configuration is fixed at construction;
// a Decoder holds no per-call state and is safe for concurrent use.
type Decoder struct {
	charset         *Charset
	charsetName     string
	target          string
	captureOriginal bool
	capitan         *capitan.Capitan
	pipeline        *pipz.Pipeline[Record]
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithDecoderCharset declares the source byte encoding by IANA name.
// If not specified, UTF-8 is assumed.
func WithDecoderCharset(name string) DecoderOption {
	return func(d *Decoder) {
		d.charsetName = name
	}
}

// WithDecoderTarget nests decoded content under the given field path instead
// of merging it at the record root. Fallback records are never nested.
func WithDecoderTarget(path string) DecoderOption {
	return func(d *Decoder) {
		d.target = path
	}
}

// WithDecoderOriginalCapture preserves the raw decoded text at OriginalPath
// on each successfully parsed record. A value already present at that path
// in the payload itself is never overwritten.
func WithDecoderOriginalCapture() DecoderOption {
	return func(d *Decoder) {
		d.captureOriginal = true
	}
}

// WithDecoderCapitan sets a custom Capitan instance for error reporting.
func WithDecoderCapitan(c *capitan.Capitan) DecoderOption {
	return func(d *Decoder) {
		d.capitan = c
	}
}

// NewDecoder creates a Decoder that delivers each decoded record to handler.
//
// Parameters:
//   - handler: receives every record produced by a Decode call
//   - pipelineOpts: reliability middleware around delivery (retry, timeout,
//     circuit breaker); nil for none
//   - opts: decoder configuration (charset, target, original capture)
//
// The declared charset is validated here; an unknown name fails construction.
func NewDecoder(handler DecodeHandler, pipelineOpts []Option[Record], opts ...DecoderOption) (*Decoder, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}

	charset, err := LookupCharset(d.charsetName)
	if err != nil {
		return nil, err
	}
	d.charset = charset

	// Build pipeline: start with terminal, wrap with options
	chain := newEmitTerminal(handler)
	for _, opt := range pipelineOpts {
		chain = opt(chain)
	}
	d.pipeline = pipz.NewPipeline(decodePipelineID, chain)

	return d, nil
}

// newEmitTerminal creates the terminal operation that hands a record to the handler.
func newEmitTerminal(handler DecodeHandler) pipz.Chainable[Record] {
	return pipz.Apply(emitID, func(ctx context.Context, rec Record) (Record, error) {
		return rec, handler(ctx, rec)
	})
}

// Decode normalizes, parses, and fans out one payload. Parse and shape
// failures never surface here: they degrade to a single fallback record and
// are reported on ErrorSignal. Handler and pipeline errors are returned;
// delivery still continues for the remaining records of the payload, and the
// first error wins.
func (d *Decoder) Decode(ctx context.Context, data []byte) error {
	text := d.charset.Normalize(data)
	var firstErr error
	for _, rec := range d.shape(ctx, text) {
		if _, err := d.pipeline.Process(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// shape parses text and produces the records for one payload. It is total:
// any parse failure, unexpected root shape, or recovered panic yields the
// single fallback record instead of an error.
func (d *Decoder) shape(ctx context.Context, text string) (records []Record) {
	defer func() {
		if r := recover(); r != nil {
			d.emitError(ctx, fmt.Sprintf("panic: %v", r), text)
			records = []Record{fallbackRecord(text)}
		}
	}()

	var root any
	if err := json.UnmarshalFromString(text, &root); err != nil {
		d.emitError(ctx, err.Error(), text)
		return []Record{fallbackRecord(text)}
	}

	switch value := root.(type) {
	case map[string]any:
		return []Record{d.assemble(value, text)}
	case []any:
		out := make([]Record, 0, len(value))
		for _, el := range value {
			obj, ok := el.(map[string]any)
			if !ok {
				// Degrade this element alone; its siblings are unaffected.
				raw := scalarText(el)
				d.emitError(ctx, "array element is not an object", raw)
				out = append(out, fallbackRecord(raw))
				continue
			}
			out = append(out, d.assemble(obj, text))
		}
		return out
	default:
		d.emitError(ctx, "JSON root is not an object or array", text)
		return []Record{fallbackRecord(text)}
	}
}

// assemble builds a record from one parsed object, applying target nesting
// and original-payload capture.
func (d *Decoder) assemble(obj map[string]any, text string) Record {
	var rec Record
	if d.target != "" {
		rec = make(Record, 1)
		rec.Set(d.target, obj)
	} else {
		rec = Record(obj)
	}
	if d.captureOriginal {
		if _, ok := rec.Get(OriginalPath); !ok {
			rec.Set(OriginalPath, text)
		}
	}
	return rec
}

// fallbackRecord is the degraded shape for unparseable input: the raw text
// under "message" and the parse-failure marker in "tags".
func fallbackRecord(text string) Record {
	rec := Record{"message": text}
	rec.AddTag(TagParseFailure)
	return rec
}

// scalarText renders a parsed value back to its compact JSON text form.
func scalarText(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// emitError emits an absorbed decode failure to ErrorSignal.
func (d *Decoder) emitError(ctx context.Context, errMsg, raw string) {
	e := Error{
		Operation: "decode",
		Err:       errMsg,
		Raw:       raw,
	}
	if d.capitan != nil {
		d.capitan.Emit(ctx, ErrorSignal, ErrorKey.Field(e))
	} else {
		capitan.Emit(ctx, ErrorSignal, ErrorKey.Field(e))
	}
}

// Close releases pipeline resources.
func (d *Decoder) Close() error {
	if d.pipeline != nil {
		return d.pipeline.Close()
	}
	return nil
}
