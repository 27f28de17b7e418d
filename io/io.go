// Package io couples scribe codecs to io.Reader/io.Writer byte streams.
// Useful for testing, CLI piping, and file-based pipelines.
package io

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/zoobzio/scribe"
)

// Source reads delimited payloads from an io.Reader and drives a decoder,
// one Decode call per frame.
type Source struct {
	reader    io.Reader
	delimiter byte
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithSourceDelimiter sets the frame delimiter (default: newline).
func WithSourceDelimiter(d byte) SourceOption {
	return func(s *Source) {
		s.delimiter = d
	}
}

// NewSource creates a Source reading from r.
func NewSource(r io.Reader, opts ...SourceOption) *Source {
	s := &Source{
		reader:    r,
		delimiter: '\n',
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scans frames from the reader and decodes each until the reader is
// drained, the context is canceled, or a delivery error is returned by the
// decoder. Malformed frames do not stop the run; the decoder degrades them
// to fallback records.
func (s *Source) Run(ctx context.Context, dec *scribe.Decoder) error {
	scanner := bufio.NewScanner(s.reader)
	if s.delimiter != '\n' {
		scanner.Split(splitFunc(s.delimiter))
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := dec.Decode(ctx, scanner.Bytes()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Sink writes delimited frames to an io.Writer. Its Write method satisfies
// scribe.EncodeHandler, so a Sink plugs directly into an encoder.
type Sink struct {
	writer    io.Writer
	delimiter byte
	mu        sync.Mutex
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithSinkDelimiter sets the frame delimiter (default: newline).
func WithSinkDelimiter(d byte) SinkOption {
	return func(s *Sink) {
		s.delimiter = d
	}
}

// NewSink creates a Sink writing to w.
func NewSink(w io.Writer, opts ...SinkOption) *Sink {
	s := &Sink{
		writer:    w,
		delimiter: '\n',
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write writes one frame followed by the delimiter.
func (s *Sink) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	_, err := s.writer.Write([]byte{s.delimiter})
	return err
}

// splitFunc returns a bufio.SplitFunc for the given delimiter.
func splitFunc(delim byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		for i, b := range data {
			if b == delim {
				return i + 1, data[:i], nil
			}
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}
