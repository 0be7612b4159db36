package backend

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnavailableError indicates the call never produced a backend answer: the
// connection is down, the deadline expired, or the call was cancelled in
// flight. The gateway reports it as a 502.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string { return "backend unavailable: " + e.Err.Error() }

func (e *UnavailableError) Unwrap() error { return e.Err }

// RejectedError indicates the backend answered with an application-level
// failure status.
type RejectedError struct {
	Code    codes.Code
	Message string
}

func (e *RejectedError) Error() string {
	return "backend rejected call: " + e.Code.String() + ": " + e.Message
}

// mapCallError translates a gRPC call failure into the gateway error
// taxonomy. Calls are never retried here; retry policy belongs to the
// caller.
func mapCallError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &UnavailableError{Err: err}
	}

	st, ok := status.FromError(err)
	if !ok {
		return &UnavailableError{Err: err}
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return &UnavailableError{Err: err}
	default:
		return &RejectedError{Code: st.Code(), Message: st.Message()}
	}
}
