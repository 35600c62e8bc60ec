package visualizer

import "google.golang.org/grpc"

// StreamRequest is the (empty) request message clients send to open
// the snapshot stream. It exists so the single RPC has a concrete
// request type to receive, per grpc's server-streaming contract.
type StreamRequest struct{}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "hqpik.visualizer.Visualizer",
	HandlerType: (*any)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName: "Stream",
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				var req StreamRequest
				if err := stream.RecvMsg(&req); err != nil {
					return err
				}
				return srv.(*Server).Stream(stream)
			},
			ServerStreams: true,
		},
	},
	Metadata: "visualizer",
}
