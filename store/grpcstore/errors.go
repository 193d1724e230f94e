package grpcstore

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"goldenseed.dev/gqs/store"
)

// mapRPC translates gRPC status codes back into the store sentinel errors
// so client callers can branch with errors.Is.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return store.ErrNotFound
	case codes.InvalidArgument:
		if st.Message() == store.ErrNotEnvelope.Error() {
			return store.ErrNotEnvelope
		}
		return store.ErrInvalidCID
	case codes.DataLoss:
		return store.ErrCIDMismatch
	case codes.FailedPrecondition:
		if st.Message() == store.ErrImmutable.Error() {
			return store.ErrImmutable
		}
		return err
	default:
		return err
	}
}
