package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is the content-subtype clients negotiate ("application/grpc+json").
const codecName = "json"

// jsonCodec carries plain Go structs over gRPC without generated protobuf
// types. The server forces it for every call; clients pass it with
// grpc.ForceCodec or grpc.CallContentSubtype(codecName).
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string { return codecName }

// Codec returns the codec clients must use to talk to the lifecycle service.
func Codec() encoding.Codec {
	return jsonCodec{}
}
