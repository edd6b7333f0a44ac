package service

// Result is either a value (Ok) or a *GatewayError (Err), never both.
type Result[T any] struct {
	value T
	err   *GatewayError
}

func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

func Err[T any](err *GatewayError) Result[T] {
	if err == nil {
		err = NewGatewayError(KindProtocol, "unknown", "missing error", nil)
	}
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool { return r.err == nil }

// Value returns the payload; the zero value when r is an Err.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure; nil when r is Ok.
func (r Result[T]) Err() *GatewayError { return r.err }

// Unpack converts r into Go's (value, error) convention.
func (r Result[T]) Unpack() (T, error) {
	if r.err != nil {
		return r.value, r.err
	}
	return r.value, nil
}
