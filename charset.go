package scribe

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Charset converts raw bytes in a declared source encoding to UTF-8 text.
// Byte sequences invalid under the declared encoding never fail conversion;
// they are substituted with U+FFFD so decoding can always proceed.
type Charset struct {
	name string
	enc  encoding.Encoding // nil for the UTF-8 fast path
}

// LookupCharset resolves a declared encoding name against the IANA registry.
// An unrecognized name is a configuration error. The empty name resolves to
// UTF-8.
func LookupCharset(name string) (*Charset, error) {
	if name == "" {
		name = "UTF-8"
	}
	if isUTF8Name(name) {
		return &Charset{name: "UTF-8"}, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return &Charset{name: name, enc: enc}, nil
}

func isUTF8Name(name string) bool {
	switch strings.ToUpper(name) {
	case "UTF-8", "UTF8":
		return true
	}
	return false
}

// Name returns the declared encoding name.
func (c *Charset) Name() string {
	return c.name
}

// Normalize converts data to well-formed UTF-8 text. It never fails:
// undecodable byte sequences are replaced rather than rejected.
func (c *Charset) Normalize(data []byte) string {
	if c.enc == nil {
		if utf8.Valid(data) {
			return string(data)
		}
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	decoded, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		// Decoders substitute where they can; a hard error means the tail
		// could not be transformed. Salvage what is valid and pad the rest.
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
}
