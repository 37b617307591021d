// Package outcome defines the three-way result of a typed network call:
// a decoded success payload, a decoded failure payload, or a transport error
// message for calls that produced no usable payload at all.
package outcome

import (
	"errors"
	"fmt"
)

// ErrNotSuccessful is the panic value of Unwrap on a non-success outcome.
var ErrNotSuccessful = errors.New("outcome: not a success")

// Reasoner is implemented by failure payloads. Reason returns a human-readable
// explanation suitable for display.
type Reasoner interface {
	Reason() string
}

// Kind identifies which variant an Outcome holds.
type Kind int

const (
	// KindUnknown is the zero value; no constructor produces it.
	KindUnknown Kind = iota
	KindSuccess
	KindFailure
	KindTransportError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	case KindTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of a call: exactly one of a success value S, a failure
// payload F, or a transport error message.
type Outcome[S any, F Reasoner] struct {
	kind    Kind
	value   S
	failure F
	message string
}

// Success wraps a decoded success payload.
func Success[S any, F Reasoner](value S) Outcome[S, F] {
	return Outcome[S, F]{kind: KindSuccess, value: value}
}

// Failure wraps a decoded failure payload.
func Failure[S any, F Reasoner](failure F) Outcome[S, F] {
	return Outcome[S, F]{kind: KindFailure, failure: failure}
}

// TransportError wraps a message for a call that produced no typed payload.
func TransportError[S any, F Reasoner](message string) Outcome[S, F] {
	return Outcome[S, F]{kind: KindTransportError, message: message}
}

// Kind reports the populated variant.
func (o Outcome[S, F]) Kind() Kind {
	return o.kind
}

// IsSuccessful reports whether o holds a success value.
func (o Outcome[S, F]) IsSuccessful() bool {
	return o.kind == KindSuccess
}

// IsFailure reports whether o holds a failure payload.
func (o Outcome[S, F]) IsFailure() bool {
	return o.kind == KindFailure
}

// IsTransportError reports whether o holds a transport error message.
func (o Outcome[S, F]) IsTransportError() bool {
	return o.kind == KindTransportError
}

// Unwrap returns the success value. It panics with ErrNotSuccessful when o is
// not a success; check IsSuccessful first or use Value.
func (o Outcome[S, F]) Unwrap() S {
	if o.kind != KindSuccess {
		panic(fmt.Errorf("%w: %s", ErrNotSuccessful, o.kind))
	}
	return o.value
}

// Value returns the success value and whether o is a success.
func (o Outcome[S, F]) Value() (S, bool) {
	return o.value, o.kind == KindSuccess
}

// Failure returns the failure payload and whether o is a failure.
func (o Outcome[S, F]) Failure() (F, bool) {
	return o.failure, o.kind == KindFailure
}

// Message returns the transport error message and whether o is a transport error.
func (o Outcome[S, F]) Message() (string, bool) {
	return o.message, o.kind == KindTransportError
}

// Describe renders a non-success outcome: onFailure(payload) for a failure and
// the message for a transport error. A success describes as "".
func (o Outcome[S, F]) Describe(onFailure func(F) string) string {
	switch o.kind {
	case KindFailure:
		return onFailure(o.failure)
	case KindTransportError:
		return o.message
	default:
		return ""
	}
}

// Reason is Describe using the payload's own Reason.
func (o Outcome[S, F]) Reason() string {
	return o.Describe(func(f F) string { return f.Reason() })
}

// GetOrElse returns the success value, or the result of fallback applied to
// the failure payload (an F) or the transport message (a string).
func (o Outcome[S, F]) GetOrElse(fallback func(any) S) S {
	switch o.kind {
	case KindSuccess:
		return o.value
	case KindFailure:
		return fallback(o.failure)
	default:
		return fallback(o.message)
	}
}

// Err converts o into an error: nil for a success, *PayloadError for a
// failure and *TransportErr for anything else.
func (o Outcome[S, F]) Err() error {
	switch o.kind {
	case KindSuccess:
		return nil
	case KindFailure:
		return &PayloadError[F]{Payload: o.failure}
	default:
		return &TransportErr{Message: o.message}
	}
}

func (o Outcome[S, F]) String() string {
	switch o.kind {
	case KindSuccess:
		return fmt.Sprintf("Success(%v)", o.value)
	case KindFailure:
		return fmt.Sprintf("Failure(%s)", o.failure.Reason())
	case KindTransportError:
		return fmt.Sprintf("TransportError(%s)", o.message)
	default:
		return "Unknown"
	}
}

// Map transforms the success value of o. Failures and transport errors pass
// through with their original payload or message.
func Map[S, R any, F Reasoner](o Outcome[S, F], fn func(S) R) Outcome[R, F] {
	switch o.kind {
	case KindSuccess:
		return Success[R, F](fn(o.value))
	case KindFailure:
		return Failure[R, F](o.failure)
	case KindTransportError:
		return TransportError[R, F](o.message)
	default:
		return Outcome[R, F]{}
	}
}

// Fold collapses o into a single value by applying the handler for its variant.
func Fold[S any, F Reasoner, R any](o Outcome[S, F], onSuccess func(S) R, onFailure func(F) R, onError func(string) R) R {
	switch o.kind {
	case KindSuccess:
		return onSuccess(o.value)
	case KindFailure:
		return onFailure(o.failure)
	default:
		return onError(o.message)
	}
}

// PayloadError carries a typed failure payload as an error.
type PayloadError[F Reasoner] struct {
	Payload F
}

func (e *PayloadError[F]) Error() string {
	return e.Payload.Reason()
}

// TransportErr carries a transport error message as an error.
type TransportErr struct {
	Message string
}

func (e *TransportErr) Error() string {
	return e.Message
}
