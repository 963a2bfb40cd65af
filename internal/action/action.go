// Package action wraps fallible units of work into a uniform result
// envelope. Every operation that crosses a service boundary (AI calls,
// create/update/delete) returns a Result; failures never escape this
// layer as raised panics or unclassified errors.
package action

import (
	"context"
	"fmt"
)

// Result is the discriminated outcome of one fallible operation.
// It is constructed once per call and never mutated.
type Result[T any] struct {
	OK   bool
	Data T
	Err  *ClassifiedError
}

// Ok wraps a successful value.
func Ok[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

// Fail wraps a classified failure.
func Fail[T any](ce ClassifiedError) Result[T] {
	return Result[T]{Err: &ce}
}

// Do executes fn and always returns a Result. A returned error is
// classified; a panic inside fn is recovered and classified from the
// panic value. This is the only place a panic is allowed to cross an
// operation boundary.
func Do[T any](ctx context.Context, c *Classifier, fn func(context.Context) (T, error)) (res Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Fail[T](c.Classify(rec))
		}
	}()

	data, err := fn(ctx)
	if err != nil {
		return Fail[T](c.Classify(err))
	}
	return Ok(data)
}

// Error implements error so a Result failure can be propagated by
// callers that only care about the message.
func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}
