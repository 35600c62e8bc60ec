package visualizer

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec is a minimal google.golang.org/grpc/encoding.Codec that
// marshals wire messages as JSON instead of protobuf. The visualizer
// is a write-only diagnostic sink with one message shape (Snapshot);
// generating real .pb.go stubs for it would buy nothing a plain JSON
// struct doesn't already give, so this codec lets the server exercise
// genuine grpc-go transport and service registration without one.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
