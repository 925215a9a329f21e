package storefront

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MapCommandError converts a CommandError anywhere in err's chain to a gRPC
// status error. Errors that already carry a gRPC status pass through; anything
// else is wrapped as Internal.
func MapCommandError(err error) error {
	if err == nil {
		return nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case StatusInvalidArgument:
			return status.Error(codes.InvalidArgument, cmdErr.Message)
		case StatusFailedPrecondition:
			return status.Error(codes.FailedPrecondition, cmdErr.Message)
		case StatusNotFound:
			return status.Error(codes.NotFound, cmdErr.Message)
		case StatusUnavailable:
			return status.Error(codes.Unavailable, cmdErr.Message)
		}
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Errorf(codes.Internal, "internal error: %v", err)
}
