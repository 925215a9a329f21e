package storefront

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceTest = "growteq.test.v1.Echo"
	methodEcho  = "Echo"
	methodFail  = "Fail"
)

type echoService struct {
	prefix string
}

func handleEcho(ctx context.Context, srv *echoService, req *structpb.Struct) (*structpb.Struct, error) {
	msg := req.GetFields()["message"].GetStringValue()
	return structpb.NewStruct(map[string]interface{}{"message": srv.prefix + msg})
}

func handleFail(ctx context.Context, srv *echoService, req *structpb.Struct) (*structpb.Struct, error) {
	return nil, MapCommandError(NewFailedPrecondition("always fails"))
}

func newEchoRouter() *MethodRouter[*echoService] {
	return NewMethodRouter[*echoService](serviceTest).
		On(methodEcho, handleEcho).
		On(methodFail, handleFail)
}

func TestMethodRouter_Types_preservesOrder(t *testing.T) {
	types := newEchoRouter().Types()
	if len(types) != 2 || types[0] != methodEcho || types[1] != methodFail {
		t.Errorf("unexpected types %v", types)
	}
}

func TestMethodRouter_FullMethod(t *testing.T) {
	if got := newEchoRouter().FullMethod(methodEcho); got != "/growteq.test.v1.Echo/Echo" {
		t.Errorf("unexpected full method %q", got)
	}
}

func TestMethodRouter_Dispatch_callsHandler(t *testing.T) {
	req, _ := structpb.NewStruct(map[string]interface{}{"message": "hi"})
	resp, err := newEchoRouter().Dispatch(context.Background(), &echoService{prefix: "> "}, methodEcho, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.GetFields()["message"].GetStringValue(); got != "> hi" {
		t.Errorf("expected '> hi', got %q", got)
	}
}

func TestMethodRouter_Dispatch_unknownMethod(t *testing.T) {
	_, err := newEchoRouter().Dispatch(context.Background(), &echoService{}, "Nope", &structpb.Struct{})
	cmdErr, ok := err.(*CommandError)
	if !ok {
		t.Fatalf("expected CommandError, got %T", err)
	}
	if cmdErr.Code != StatusInvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", cmdErr.Code)
	}
}

func TestMethodRouter_ServiceDesc_servesOverGRPC(t *testing.T) {
	router := newEchoRouter()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	s.RegisterService(router.ServiceDesc(), &echoService{prefix: "echo: "})
	go func() { _ = s.Serve(lis) }()
	defer s.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := Call(ctx, conn, router.FullMethod(methodEcho), map[string]interface{}{"message": "roses"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if resp["message"] != "echo: roses" {
		t.Errorf("unexpected response %v", resp)
	}

	_, err = Call(ctx, conn, router.FullMethod(methodFail), map[string]interface{}{})
	if st, _ := status.FromError(err); st.Code() != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %v", err)
	}
}
