package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a remote call failed.
type ErrorKind string

const (
	// KindTransport: unreachable host, timeout, cancelled request.
	KindTransport ErrorKind = "transport"
	// KindProtocol: response did not have the expected shape.
	KindProtocol ErrorKind = "protocol"
	// KindBusiness: well-formed response with status "error".
	KindBusiness ErrorKind = "business"
	// KindInvalidArgument: rejected locally before any network call.
	KindInvalidArgument ErrorKind = "invalid_argument"
)

// GatewayError is the single failure shape returned by the prediction gateway.
type GatewayError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func NewGatewayError(kind ErrorKind, op, message string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of a GatewayError anywhere in err's chain, or "".
func KindOf(err error) ErrorKind {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
