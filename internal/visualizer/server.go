package visualizer

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
)

type clientStream struct {
	id string
	ch chan Snapshot
}

// Server is the gRPC service publishing Snapshot to every subscribed
// stream. It owns no goroutines of its own beyond what grpc.Server
// spins up per RPC; Publish is called by whoever owns the primitive
// store and task manager whenever their state changes.
type Server struct {
	grpcServer *grpc.Server

	mu      sync.Mutex
	clients map[string]*clientStream

	seq atomic.Int64
}

// NewServer builds an unstarted Server.
func NewServer() *Server {
	s := &Server{clients: make(map[string]*clientStream)}
	s.grpcServer = grpc.NewServer()
	s.grpcServer.RegisterService(&serviceDesc, s)
	return s
}

// Serve blocks, accepting connections on addr until the listener
// errors or the server is stopped.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("[visualizer] listening on %s", addr)
	return s.grpcServer.Serve(lis)
}

// Stop gracefully drains in-flight streams.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}

// GRPCServer exposes the underlying grpc.Server so other services
// (the monitoring stream) can register themselves on the same
// listener instead of opening a second port.
func (s *Server) GRPCServer() *grpc.Server { return s.grpcServer }

// Publish fans snap out to every connected subscriber, dropping it for
// any subscriber whose buffer is full rather than blocking the caller
// (a stale visualizer frame is acceptable; a stalled control tick is
// not).
func (s *Server) Publish(snap Snapshot) {
	snap.SequenceNr = s.seq.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		select {
		case c.ch <- snap:
		default:
		}
	}
}

func (s *Server) subscribe() *clientStream {
	c := &clientStream{id: time.Now().Format("20060102T150405.000000000"), ch: make(chan Snapshot, 8)}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	return c
}

func (s *Server) unsubscribe(id string) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
}

// Stream is the server-streaming RPC handler: it sends a Snapshot for
// every Publish call until the client disconnects.
func (s *Server) Stream(stream grpc.ServerStream) error {
	c := s.subscribe()
	defer s.unsubscribe(c.id)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-c.ch:
			if err := stream.SendMsg(&snap); err != nil {
				return err
			}
		}
	}
}
