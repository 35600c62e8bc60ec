package monitor

import "google.golang.org/grpc"

// StreamRequest is the (empty) request message clients send to open
// the batch stream.
type StreamRequest struct{}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "hqpik.monitor.Monitor",
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
				return srv.(*Publisher).Stream(stream)
			},
			ServerStreams: true,
		},
	},
	Metadata: "monitor",
}
