package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
)

const ServiceName = "questkeeper.Lifecycle"

// LifecycleServer is the handler type registered for questkeeper.Lifecycle.
type LifecycleServer interface {
	Serve(ctx context.Context, lis net.Listener) error
}

// unary builds a method descriptor that decodes Req, runs the interceptor
// chain and dispatches to call.
func unary[Req, Resp any](name string, call func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FullMethod returns the invocation path of a lifecycle method.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// LifecycleServiceDesc describes questkeeper.Lifecycle. Messages are the
// structs in messages.go encoded by the JSON codec.
var LifecycleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LifecycleServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateCharacter", (*GRPCServer).CreateCharacter),
		unary("GetCharacter", (*GRPCServer).GetCharacter),
		unary("RequestValidation", (*GRPCServer).RequestValidation),
		unary("AcceptValidation", (*GRPCServer).AcceptValidation),
		unary("RequestTransfer", (*GRPCServer).RequestTransfer),
		unary("AcceptTransfer", (*GRPCServer).AcceptTransfer),
		unary("GiftCharacter", (*GRPCServer).GiftCharacter),
		unary("UpdateProfession", (*GRPCServer).UpdateProfession),
		unary("RequestPortraitUpload", (*GRPCServer).RequestPortraitUpload),
		unary("PortraitURL", (*GRPCServer).PortraitURL),
		unary("ListMyCharacters", (*GRPCServer).ListMyCharacters),
		unary("ListMasteredCharacters", (*GRPCServer).ListMasteredCharacters),
		unary("ListPendingValidations", (*GRPCServer).ListPendingValidations),
		unary("ListPendingTransfers", (*GRPCServer).ListPendingTransfers),

		unary("CreateAdventure", (*GRPCServer).CreateAdventure),
		unary("GetAdventure", (*GRPCServer).GetAdventure),
		unary("EnrollCharacter", (*GRPCServer).EnrollCharacter),
		unary("RemoveCharacter", (*GRPCServer).RemoveCharacter),
		unary("FinishAdventure", (*GRPCServer).FinishAdventure),
		unary("DeleteAdventure", (*GRPCServer).DeleteAdventure),
		unary("ListEnrollmentCandidates", (*GRPCServer).ListEnrollmentCandidates),
		unary("ListMyAdventures", (*GRPCServer).ListMyAdventures),

		unary("RecordEpisode", (*GRPCServer).RecordEpisode),
		unary("ApproveEpisode", (*GRPCServer).ApproveEpisode),
		unary("DeleteEpisode", (*GRPCServer).DeleteEpisode),
		unary("ListPendingEpisodes", (*GRPCServer).ListPendingEpisodes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "questkeeper/lifecycle",
}
