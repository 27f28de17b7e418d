package scribe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// byteCollector is a test handler that records encoded frames.
type byteCollector struct {
	mu     sync.Mutex
	frames [][]byte
	fn     func([]byte) error
}

func (c *byteCollector) handle(_ context.Context, data []byte) error {
	frame := make([]byte, len(data))
	copy(frame, data)
	c.mu.Lock()
	c.frames = append(c.frames, frame)
	fn := c.fn
	c.mu.Unlock()
	if fn != nil {
		return fn(frame)
	}
	return nil
}

func (c *byteCollector) all() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

func TestEncoder_Direct_CompactJSON(t *testing.T) {
	collector := &byteCollector{}
	enc, err := NewEncoder(collector.handle, nil)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	defer enc.Close()

	rec := Record{"b": "x", "a": 1, "nested": map[string]any{"k": true}}
	if err := enc.Encode(context.Background(), rec); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	frames := collector.all()
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	// Compact, deterministic key order, no line terminator.
	want := `{"a":1,"b":"x","nested":{"k":true}}`
	if string(frames[0]) != want {
		t.Errorf("expected %s, got %s", want, frames[0])
	}
	if bytes.ContainsAny(frames[0], "\n\t ") {
		t.Errorf("expected no whitespace in compact output, got %q", frames[0])
	}
}

func TestContentType(t *testing.T) {
	if ContentType != "application/json" {
		t.Errorf("expected 'application/json', got %q", ContentType)
	}
}

func TestEncoder_RoundTrip(t *testing.T) {
	collector := &recordCollector{}
	dec, err := NewDecoder(collector.handle, nil)
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	defer dec.Close()

	frames := &byteCollector{}
	enc, err := NewEncoder(frames.handle, nil)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	defer enc.Close()

	original := `{"big":9007199254740993,"fraction":0.1,"text":"héllo"}`
	if err := dec.Decode(context.Background(), []byte(original)); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if err := enc.Encode(context.Background(), collector.all()[0]); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Numbers survive the round trip without float64 truncation.
	if got := string(frames.all()[0]); got != original {
		t.Errorf("round trip changed payload:\n in: %s\nout: %s", original, got)
	}
}

func TestEncoder_WithMapping(t *testing.T) {
	collector := &byteCollector{}
	mapping := map[string]any{
		"%{k}":   "[a][b]",
		"joined": "%{[a][b]}",
		"static": true,
	}
	enc, err := NewEncoder(collector.handle, nil, WithEncoderMapping(mapping))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	defer enc.Close()

	rec := Record{"k": "x", "a": map[string]any{"b": []any{1, 2, 3}}}
	if err := enc.Encode(context.Background(), rec); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := `{"joined":"1,2,3","static":true,"x":[1,2,3]}`
	if got := string(collector.all()[0]); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestEncoder_InvalidMapping_FailsConstruction(t *testing.T) {
	_, err := NewEncoder(func(context.Context, []byte) error { return nil }, nil,
		WithEncoderMapping(map[any]any{1: "v"}))
	if err == nil {
		t.Fatal("expected construction error for invalid mapping")
	}
	if !errors.Is(err, ErrInvalidMapping) {
		t.Errorf("expected ErrInvalidMapping, got %v", err)
	}
}

func TestEncoder_NilHandler(t *testing.T) {
	_, err := NewEncoder(nil, nil)
	if !errors.Is(err, ErrNilHandler) {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
}

func TestEncoder_SerializationErrorSurfaces(t *testing.T) {
	collector := &byteCollector{}
	enc, err := NewEncoder(collector.handle, nil)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	defer enc.Close()

	rec := Record{"bad": func() {}}
	if err := enc.Encode(context.Background(), rec); err == nil {
		t.Fatal("expected serialization error to surface")
	}
	if len(collector.all()) != 0 {
		t.Error("expected no delivery on serialization failure")
	}
}

func TestEncoder_HandlerErrorSurfaces(t *testing.T) {
	boom := errors.New("sink closed")
	collector := &byteCollector{fn: func([]byte) error { return boom }}
	enc, err := NewEncoder(collector.handle, nil)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	defer enc.Close()

	err = enc.Encode(context.Background(), Record{"a": 1})
	if err == nil {
		t.Fatal("expected handler error to surface")
	}
	if !strings.Contains(err.Error(), "sink closed") {
		t.Errorf("expected wrapped handler error, got %v", err)
	}
}

func TestEncoder_WithRetry(t *testing.T) {
	var attempts int
	collector := &byteCollector{fn: func([]byte) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient error")
		}
		return nil
	}}

	opts := []Option[[]byte]{WithRetry[[]byte](3)}
	enc, err := NewEncoder(collector.handle, opts)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	defer enc.Close()

	if err := enc.Encode(context.Background(), Record{"a": 1}); err != nil {
		t.Fatalf("Encode failed after retries: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}
