// Package scribe is a bidirectional codec between raw byte payloads and
// structured records.
//
// Decoding normalizes bytes to text under a declared charset, parses the text
// as JSON, and fans out one Record per JSON object found — a root object
// yields one record, a root array yields one record per element. Input that
// cannot be parsed or shaped degrades to a single fallback record carrying
// the raw text in its message field and a parse-failure tag, so a decoder
// embedded in a long-running pipeline never halts on a bad payload.
//
// Encoding serializes a Record to compact JSON, either in its native shape or
// reshaped through a declarative mapping template compiled once at
// construction.
//
// Decoders and encoders are configured once and are safe to share across
// goroutines; no state is retained between calls. Operational failures that
// are absorbed rather than returned (parse failures, recovered panics) are
// emitted on ErrorSignal for observers.
package scribe

import (
	"context"
	"errors"

	"github.com/zoobzio/capitan"
)

// Sentinel errors for codec misconfiguration.
var (
	// ErrUnknownCharset is returned when a declared charset name is not in
	// the IANA registry.
	ErrUnknownCharset = errors.New("scribe: unknown charset")

	// ErrInvalidMapping is returned when an encode mapping template cannot
	// be compiled.
	ErrInvalidMapping = errors.New("scribe: invalid mapping template")

	// ErrNilHandler is returned when a decoder or encoder is constructed
	// without a handler.
	ErrNilHandler = errors.New("scribe: nil handler")
)

// Fixed sentinel values shared with downstream consumers.
const (
	// TagParseFailure marks fallback records produced for unparseable input.
	TagParseFailure = "_jsonparsefailure"

	// OriginalPath is the field path used for original-payload capture.
	OriginalPath = "[event][original]"
)

// DecodeHandler receives each record produced by a decode call.
// Returning an error aborts pipeline processing for that record.
type DecodeHandler func(ctx context.Context, rec Record) error

// EncodeHandler receives the serialized bytes produced by an encode call.
type EncodeHandler func(ctx context.Context, data []byte) error

// Error signals and types for observability.
// Hook into ErrorSignal to receive notifications of absorbed failures.
var (
	// ErrorSignal is emitted when scribe absorbs an operational error.
	// This includes parse failures, shape failures, and recovered panics.
	ErrorSignal = capitan.NewSignal("scribe.error", "Scribe operational error")

	// ErrorKey extracts Error from events on ErrorSignal.
	ErrorKey = capitan.NewKey[Error]("error", "scribe.Error")
)

// Error represents an operational error absorbed by the codec.
type Error struct {
	// Operation is the operation that failed: "decode" or "encode".
	Operation string `json:"operation"`

	// Err is the error message.
	Err string `json:"error"`

	// Raw contains the offending payload text, if available.
	// Populated for parse and shape failures to aid debugging.
	Raw string `json:"raw,omitempty"`
}
