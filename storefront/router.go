package storefront

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Error message constants.
const (
	ErrMsgUnknownMethod = "unknown method"
)

// UnaryHandler processes one request payload against a service implementation.
type UnaryHandler[S any] func(ctx context.Context, srv S, req *structpb.Struct) (*structpb.Struct, error)

type methodEntry[S any] struct {
	method  string
	handler UnaryHandler[S]
}

// MethodRouter collects unary handlers for a gRPC service and derives the
// grpc.ServiceDesc from its .On() registrations, so no generated stubs are needed.
//
// Requests and responses are google.protobuf.Struct messages.
//
// Example:
//
//	router := storefront.NewMethodRouter[*Service]("growteq.storefront.v1.Storefront").
//	    On("GetCart", handleGetCart).
//	    On("RemoveLine", handleRemoveLine)
//
//	grpcServer.RegisterService(router.ServiceDesc(), svc)
type MethodRouter[S any] struct {
	service string
	entries []methodEntry[S]
}

// NewMethodRouter creates a router for the fully qualified service name.
func NewMethodRouter[S any](service string) *MethodRouter[S] {
	return &MethodRouter[S]{service: service}
}

// On registers a handler for a method name.
func (r *MethodRouter[S]) On(method string, handler UnaryHandler[S]) *MethodRouter[S] {
	r.entries = append(r.entries, methodEntry[S]{method, handler})
	return r
}

// Service returns the fully qualified service name.
func (r *MethodRouter[S]) Service() string { return r.service }

// FullMethod returns the gRPC path for a method, e.g. "/pkg.Service/Method".
func (r *MethodRouter[S]) FullMethod(method string) string {
	return "/" + r.service + "/" + method
}

// Types returns registered method names in registration order.
func (r *MethodRouter[S]) Types() []string {
	result := make([]string, len(r.entries))
	for i, e := range r.entries {
		result[i] = e.method
	}
	return result
}

// Dispatch calls the handler registered for method in-process.
func (r *MethodRouter[S]) Dispatch(ctx context.Context, srv S, method string, req *structpb.Struct) (*structpb.Struct, error) {
	for _, e := range r.entries {
		if e.method == method {
			return e.handler(ctx, srv, req)
		}
	}
	return nil, NewInvalidArgumentf("%s: %s", ErrMsgUnknownMethod, method)
}

// ServiceDesc builds the descriptor to pass to grpc.Server.RegisterService.
func (r *MethodRouter[S]) ServiceDesc() *grpc.ServiceDesc {
	methods := make([]grpc.MethodDesc, 0, len(r.entries))
	for _, e := range r.entries {
		methods = append(methods, r.methodDesc(e))
	}
	return &grpc.ServiceDesc{
		ServiceName: r.service,
		HandlerType: (*interface{})(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    r.service,
	}
}

func (r *MethodRouter[S]) methodDesc(e methodEntry[S]) grpc.MethodDesc {
	full := r.FullMethod(e.method)
	handler := e.handler
	return grpc.MethodDesc{
		MethodName: e.method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl, ok := srv.(S)
			if !ok {
				return nil, fmt.Errorf("service %T does not serve %s", srv, full)
			}
			if interceptor == nil {
				return handler(ctx, impl, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return handler(ctx, impl, req.(*structpb.Struct))
			})
		},
	}
}

// Call invokes a Struct-based unary method on a client connection.
func Call(ctx context.Context, conn grpc.ClientConnInterface, fullMethod string, req map[string]interface{}) (map[string]interface{}, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, NewInvalidArgumentf("encode request: %v", err)
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, fullMethod, in, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
