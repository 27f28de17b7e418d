package scribe

import (
	"context"

	"github.com/zoobzio/pipz"
)

// WithApply wraps a function that transforms data and may fail.
// Use for validation, enrichment, or any operation that can error.
// Return an error to abort delivery.
func WithApply[T any](name string, fn func(context.Context, T) (T, error)) Option[T] {
	return func(pipeline pipz.Chainable[T]) pipz.Chainable[T] {
		id := pipz.NewIdentity(name, "User apply stage")
		return pipz.NewSequence(id, pipz.Apply(id, fn), pipeline)
	}
}

// WithEffect wraps a function that performs side effects without modifying data.
// Use for logging, metrics, or notifications.
// Return an error to abort delivery.
func WithEffect[T any](name string, fn func(context.Context, T) error) Option[T] {
	return func(pipeline pipz.Chainable[T]) pipz.Chainable[T] {
		id := pipz.NewIdentity(name, "User effect stage")
		return pipz.NewSequence(id, pipz.Effect(id, fn), pipeline)
	}
}

// WithTransform wraps a pure transformation function that cannot fail.
// Use for data formatting, field remapping, or computed fields.
func WithTransform[T any](name string, fn func(context.Context, T) T) Option[T] {
	return func(pipeline pipz.Chainable[T]) pipz.Chainable[T] {
		id := pipz.NewIdentity(name, "User transform stage")
		return pipz.NewSequence(id, pipz.Transform(id, fn), pipeline)
	}
}
