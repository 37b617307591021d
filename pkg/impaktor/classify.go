package impaktor

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"

	"go.uber.org/zap"

	"github.com/impaktor/pkg/codec"
	"github.com/impaktor/pkg/outcome"
)

// Classify maps the error of a failed call to an outcome, decoding the body
// of a *StatusError as F with the JSON codec. It is what Call does on every
// failure, minus logging.
func Classify[S any, F outcome.Reasoner](err error) outcome.Outcome[S, F] {
	o, _ := classify[S, F](err, codec.JSON{})
	return o
}

// classify applies the rules in order; the first match wins.
func classify[S any, F outcome.Reasoner](err error, dec codec.Codec) (outcome.Outcome[S, F], Class) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		var payload F
		if derr := dec.Unmarshal(statusErr.Body, &payload); derr != nil {
			return outcome.TransportError[S, F](MessageBadStatus), ClassBadStatus
		}
		return outcome.Failure[S](payload), ClassFailure
	}

	switch {
	case isTimeout(err):
		return outcome.TransportError[S, F](MessageTimeout), ClassTimeout
	case isNetwork(err):
		return outcome.TransportError[S, F](MessageNetwork), ClassNetwork
	case isSerialization(err):
		return outcome.TransportError[S, F](MessageSerialization), ClassSerialization
	case errors.Is(err, ErrNotConfigured):
		return outcome.TransportError[S, F](MessageNotConfigured), ClassNotConfigured
	default:
		return outcome.TransportError[S, F](MessageUnexpected), ClassUnexpected
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetwork(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var opErr net.Error
	return errors.As(err, &opErr)
}

func isSerialization(err error) bool {
	var (
		decodeErr      *DecodeError
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		unsupportedErr *json.UnsupportedTypeError
		valueErr       *json.UnsupportedValueError
		marshalerErr   *json.MarshalerError
	)
	return errors.As(err, &decodeErr) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &unsupportedErr) ||
		errors.As(err, &valueErr) ||
		errors.As(err, &marshalerErr)
}

// logFailure writes a classified failure. A misbehaving logger never fails
// the call.
func (c *Client) logFailure(verb Verb, url string, class Class, status int, err error) {
	defer func() { _ = recover() }()

	fields := []zap.Field{
		zap.String("verb", string(verb)),
		zap.String("url", url),
		zap.String("class", string(class)),
		zap.Error(err),
	}
	if status != 0 {
		fields = append(fields, zap.Int("status", status))
	}

	switch class {
	case ClassSerialization, ClassUnexpected, ClassBadStatus:
		c.logger.Error("call failed", fields...)
	default:
		c.logger.Warn("call failed", fields...)
	}
}
