// Package api defines the Connect RPC surface: procedure names, message
// types, handler and client constructors. Messages are plain Go structs
// carried by a JSON codec registered under the "json" name, so unary calls
// use the application/json content type.
package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// CodecName is the codec name Connect derives the content type from
const CodecName = "json"

type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	// Connect sends an empty body for a zero message
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal into %T: %w", msg, err)
	}
	return nil
}

// WithJSONCodec registers the JSON codec on a handler or client
func WithJSONCodec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
