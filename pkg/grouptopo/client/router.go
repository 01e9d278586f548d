package client

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/nameservice"
	"github.com/jabolina/grouptopo/pkg/grouptopo/transportpb"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// MessageRouter is the server side of the default gRPC transport: it
// implements transportpb.TransportServer, translating each inbound RPC
// into the decoded wire.FramedMessage the client package's Dispatch
// understands. Only the task acting as the job driver serves Lookup, so
// registry is nil on every other task.
type MessageRouter struct {
	transportpb.UnimplementedTransportServer

	client   *GroupCommClient
	registry *nameservice.Registry
}

// NewMessageRouter builds a router for client. registry may be nil; a
// nil registry makes Lookup fail with codes.Unimplemented, the expected
// shape for a non-driver task.
func NewMessageRouter(client *GroupCommClient, registry *nameservice.Registry) *MessageRouter {
	return &MessageRouter{client: client, registry: registry}
}

func (r *MessageRouter) Send(_ context.Context, in *transportpb.FramedMessage) (*transportpb.Ack, error) {
	msg := wire.FramedMessage{
		Group:       ids.GroupName(in.GetGroup()),
		Operator:    ids.OperatorName(in.GetOperator()),
		Source:      ids.TaskID(in.GetSource()),
		Destination: ids.TaskID(in.GetDestination()),
		Kind:        wire.Kind(in.GetKind()),
		Payloads:    in.GetPayloads(),
	}
	if err := r.client.Dispatch(msg); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &transportpb.Ack{}, nil
}

func (r *MessageRouter) Lookup(ctx context.Context, in *transportpb.LookupRequest) (*transportpb.LookupResponse, error) {
	if r.registry == nil {
		return nil, status.Error(codes.Unimplemented, "this task does not serve the name registry")
	}
	endpoint, found, err := r.registry.Lookup(ctx, ids.TaskID(in.GetTaskId()))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &transportpb.LookupResponse{Endpoint: endpoint, Found: found}, nil
}

func (r *MessageRouter) Register(ctx context.Context, in *transportpb.RegisterRequest) (*transportpb.RegisterResponse, error) {
	if r.registry == nil {
		return nil, status.Error(codes.Unimplemented, "this task does not serve the name registry")
	}
	if err := r.registry.Register(ctx, ids.TaskID(in.GetTaskId()), in.GetEndpoint()); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &transportpb.RegisterResponse{}, nil
}

func (r *MessageRouter) Unregister(ctx context.Context, in *transportpb.UnregisterRequest) (*transportpb.UnregisterResponse, error) {
	if r.registry == nil {
		return nil, status.Error(codes.Unimplemented, "this task does not serve the name registry")
	}
	if err := r.registry.Unregister(ctx, ids.TaskID(in.GetTaskId())); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &transportpb.UnregisterResponse{}, nil
}
