// Package testing provides test utilities and helpers for scribe users.
// These utilities help users test their own scribe-based pipelines.
package testing

import (
	"context"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/scribe"
)

// RecordSink is a decode handler that collects delivered records.
// Thread-safe for concurrent use in tests.
type RecordSink struct {
	mu       sync.Mutex
	records  []scribe.Record
	onRecord func(scribe.Record) error
}

// NewRecordSink creates a new RecordSink for testing.
func NewRecordSink() *RecordSink {
	return &RecordSink{
		records: make([]scribe.Record, 0),
	}
}

// WithRecordCallback sets a callback invoked on each delivered record.
// A non-nil return value is surfaced as the handler error, which makes the
// sink useful for exercising retry and fallback options.
func (s *RecordSink) WithRecordCallback(fn func(scribe.Record) error) *RecordSink {
	s.onRecord = fn
	return s
}

// Handle records the delivered record. It satisfies scribe.DecodeHandler.
func (s *RecordSink) Handle(_ context.Context, rec scribe.Record) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	onRecord := s.onRecord
	s.mu.Unlock()

	if onRecord != nil {
		return onRecord(rec)
	}
	return nil
}

// Records returns a snapshot of the collected records.
func (s *RecordSink) Records() []scribe.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scribe.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Reset discards all collected records.
func (s *RecordSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}

// ByteSink is an encode handler that collects delivered frames.
// Thread-safe for concurrent use in tests.
type ByteSink struct {
	mu      sync.Mutex
	frames  [][]byte
	onFrame func([]byte) error
}

// NewByteSink creates a new ByteSink for testing.
func NewByteSink() *ByteSink {
	return &ByteSink{
		frames: make([][]byte, 0),
	}
}

// WithFrameCallback sets a callback invoked on each delivered frame.
// A non-nil return value is surfaced as the handler error.
func (s *ByteSink) WithFrameCallback(fn func([]byte) error) *ByteSink {
	s.onFrame = fn
	return s
}

// Handle records the delivered frame. It satisfies scribe.EncodeHandler.
func (s *ByteSink) Handle(_ context.Context, data []byte) error {
	frame := make([]byte, len(data))
	copy(frame, data)

	s.mu.Lock()
	s.frames = append(s.frames, frame)
	onFrame := s.onFrame
	s.mu.Unlock()

	if onFrame != nil {
		return onFrame(frame)
	}
	return nil
}

// Frames returns a snapshot of the collected frames.
func (s *ByteSink) Frames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.frames))
	copy(out, s.frames)
	return out
}

// ErrorCapture observes scribe.ErrorSignal and collects absorbed errors.
// Close the capture when done to release the observer.
type ErrorCapture struct {
	mu       sync.Mutex
	errors   []scribe.Error
	observer *capitan.Observer
}

// CaptureErrors starts collecting errors emitted on scribe.ErrorSignal via
// the given Capitan instance.
func CaptureErrors(c *capitan.Capitan) *ErrorCapture {
	capture := &ErrorCapture{
		errors: make([]scribe.Error, 0),
	}
	callback := func(_ context.Context, e *capitan.Event) {
		if serr, ok := scribe.ErrorKey.From(e); ok {
			capture.mu.Lock()
			capture.errors = append(capture.errors, serr)
			capture.mu.Unlock()
		}
	}
	if c != nil {
		capture.observer = c.Observe(callback, scribe.ErrorSignal)
	} else {
		capture.observer = capitan.Observe(callback, scribe.ErrorSignal)
	}
	return capture
}

// Errors returns a snapshot of the captured errors.
func (c *ErrorCapture) Errors() []scribe.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]scribe.Error, len(c.errors))
	copy(out, c.errors)
	return out
}

// Close releases the signal observer.
func (c *ErrorCapture) Close() {
	if c.observer != nil {
		c.observer.Close()
	}
}
