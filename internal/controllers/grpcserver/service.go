package grpcserver

import (
	"context"

	"github.com/chrissnell/autosales/internal/constants"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// EvaluateMethod is the full method name of Dashboard.Evaluate
const EvaluateMethod = "/" + constants.ServiceName + "/Evaluate"

// DashboardServer is the server API for the autosales.v1.Dashboard service.
// Requests and responses are google.protobuf.Struct values carrying the same
// JSON shape as the REST dashboard endpoint.
type DashboardServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDashboardServer registers srv with s
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EvaluateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes the autosales.v1.Dashboard service
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: constants.ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Evaluate",
			Handler:    evaluateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "autosales/v1/dashboard.proto",
}

// DashboardClient calls the autosales.v1.Dashboard service
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

// NewDashboardClient wraps an established connection
func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

// Evaluate requests the dashboard for the given inputs
func (c *DashboardClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// NewRequest builds an Evaluate request. A zero year is omitted.
func NewRequest(mode string, year int) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"mode": structpb.NewStringValue(mode),
	}
	if year != 0 {
		fields["year"] = structpb.NewNumberValue(float64(year))
	}
	return &structpb.Struct{Fields: fields}
}
