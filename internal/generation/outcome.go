package generation

import "fmt"

// FailureKind separates calls that failed from answers that were unusable.
// Consumers treat both the same way; the distinction is kept for logs.
type FailureKind string

const (
	KindGeneration FailureKind = "generation"
	KindMalformed  FailureKind = "malformed"
)

// Failure is the typed error payload of an unsuccessful generation task.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure: %s", f.Kind, f.Message)
}

// Outcome is either a validated value or a Failure, never both.
type Outcome[T any] struct {
	value   T
	failure *Failure
}

// Succeeded wraps a validated payload.
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Failed wraps a failure payload.
func Failed[T any](kind FailureKind, msg string) Outcome[T] {
	return Outcome[T]{failure: &Failure{Kind: kind, Message: msg}}
}

// Get returns the value and the failure; exactly one is meaningful.
func (o Outcome[T]) Get() (T, *Failure) {
	return o.value, o.failure
}
