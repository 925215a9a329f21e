package api

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/growteq/storefront/catalog"
	"github.com/growteq/storefront/checkout"
	"github.com/growteq/storefront/selection"
	"github.com/growteq/storefront/storefront"
)

// Failure reasons carried in the status detail under "reason".
const (
	ReasonInvalidSelection     = "INVALID_SELECTION"
	ReasonBelowMinimum         = "BELOW_MINIMUM_QUANTITY"
	ReasonCatalogUnavailable   = "CATALOG_UNAVAILABLE"
	ReasonOrderPersistFailed   = "ORDER_PERSIST_FAILED"
	ReasonMessageSendFailed    = "MESSAGE_SEND_FAILED"
	ReasonSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
)

func decode(in *structpb.Struct, out interface{}) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return storefront.NewInvalidArgumentf("decode request: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return storefront.NewInvalidArgumentf("decode request: %v", err)
	}
	return nil
}

func encode(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// unary adapts a typed handler to the Struct-based router.
func unary[Req any, Resp any](fn func(ctx context.Context, s *Service, req Req) (Resp, error)) storefront.UnaryHandler[*Service] {
	return func(ctx context.Context, s *Service, in *structpb.Struct) (*structpb.Struct, error) {
		var req Req
		if err := decode(in, &req); err != nil {
			return nil, toStatus(err)
		}
		resp, err := fn(ctx, s, req)
		if err != nil {
			return nil, toStatus(err)
		}
		out, err := encode(resp)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode response: %v", err)
		}
		return out, nil
	}
}

func withDetail(code codes.Code, msg string, detail map[string]interface{}) error {
	st := status.New(code, msg)
	d, err := structpb.NewStruct(detail)
	if err != nil {
		return st.Err()
	}
	withD, err := st.WithDetails(protoadapt.MessageV1Of(d))
	if err != nil {
		return st.Err()
	}
	return withD.Err()
}

// toStatus maps domain failures to gRPC status errors carrying a Struct
// detail the client can render from.
func toStatus(err error) error {
	var (
		invalid    *selection.InvalidSelection
		below      *selection.BelowMinimumQuantity
		persistErr *checkout.OrderPersistError
		sendErr    *checkout.MessageSendError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &invalid):
		missing := make([]interface{}, len(invalid.Missing))
		for i, f := range invalid.Missing {
			missing[i] = string(f)
		}
		return withDetail(codes.FailedPrecondition, invalid.Error(), map[string]interface{}{
			"reason":  ReasonInvalidSelection,
			"missing": missing,
		})
	case errors.As(err, &below):
		return withDetail(codes.FailedPrecondition, below.Error(), map[string]interface{}{
			"reason":           ReasonBelowMinimum,
			"minimum_quantity": below.Minimum,
			"quantity":         below.Quantity,
		})
	case errors.Is(err, catalog.ErrCatalogUnavailable), errors.Is(err, catalog.ErrClosed):
		return withDetail(codes.Unavailable, err.Error(), map[string]interface{}{
			"reason":              ReasonCatalogUnavailable,
			"catalog_unavailable": true,
		})
	case errors.As(err, &persistErr):
		return withDetail(codes.Unavailable, err.Error(), map[string]interface{}{
			"reason": ReasonOrderPersistFailed,
		})
	case errors.As(err, &sendErr):
		return withDetail(codes.Unavailable, err.Error(), map[string]interface{}{
			"reason":   ReasonMessageSendFailed,
			"order_id": sendErr.OrderID,
		})
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		return withDetail(codes.Aborted, err.Error(), map[string]interface{}{
			"reason": ReasonSubmissionInProgress,
		})
	}
	return storefront.MapCommandError(err)
}

// ErrorDetail extracts the Struct detail of a status error returned by the
// Storefront service, or nil.
func ErrorDetail(err error) map[string]interface{} {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	for _, d := range st.Details() {
		if s, ok := d.(*structpb.Struct); ok {
			return s.AsMap()
		}
	}
	return nil
}
