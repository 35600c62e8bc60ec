// Package monitor implements the monitoring stream: periodic batches
// of monitored tasks' e/ė*/performance measures, published over the
// same gRPC/JSON-codec transport as the visualizer snapshot stream —
// a second service sharing one grpc.Server and listener, grounded in
// the teacher's one-server-many-streaming-services pattern.
package monitor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
)

type clientStream struct {
	id string
	ch chan Batch
}

// Publisher fans Batch records out to every subscribed stream. It owns
// no listener of its own; the caller registers it onto a shared
// grpc.Server (typically the visualizer's) via RegisterOn.
type Publisher struct {
	mu      sync.Mutex
	clients map[string]*clientStream

	seq atomic.Int64
}

// NewPublisher builds an unregistered Publisher.
func NewPublisher() *Publisher {
	return &Publisher{clients: make(map[string]*clientStream)}
}

// RegisterOn adds the monitoring service to srv, so it streams over
// the same listener srv.Serve is (or will be) called on.
func (p *Publisher) RegisterOn(srv *grpc.Server) {
	srv.RegisterService(&serviceDesc, p)
}

// NewBatch stamps a Batch with the current time and a fresh batch ID,
// ready for Publish.
func NewBatch(tasks []TaskMeasure) Batch {
	return Batch{Timestamp: time.Now(), BatchID: uuid.NewString(), Tasks: tasks}
}

// Publish fans batch out to every connected subscriber, dropping it
// for any subscriber whose buffer is full rather than blocking the
// caller — a stale monitoring frame is acceptable, a stalled control
// tick is not.
func (p *Publisher) Publish(batch Batch) {
	p.seq.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		select {
		case c.ch <- batch:
		default:
		}
	}
}

func (p *Publisher) subscribe() *clientStream {
	c := &clientStream{id: time.Now().Format("20060102T150405.000000000"), ch: make(chan Batch, 8)}
	p.mu.Lock()
	p.clients[c.id] = c
	p.mu.Unlock()
	return c
}

func (p *Publisher) unsubscribe(id string) {
	p.mu.Lock()
	delete(p.clients, id)
	p.mu.Unlock()
}

// Stream is the server-streaming RPC handler: it sends a Batch for
// every Publish call until the client disconnects.
func (p *Publisher) Stream(stream grpc.ServerStream) error {
	c := p.subscribe()
	defer p.unsubscribe(c.id)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch := <-c.ch:
			if err := stream.SendMsg(&batch); err != nil {
				return err
			}
		}
	}
}
