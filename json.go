package scribe

import jsoniter "github.com/json-iterator/go"

// json is the engine used for all parsing and serialization.
//
// UseNumber keeps numeric literals intact through a decode/encode round trip
// instead of forcing float64. SortMapKeys makes compact output deterministic,
// which downstream consumers compare byte-for-byte.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// ContentType is the MIME type of encoded output.
const ContentType = "application/json"
