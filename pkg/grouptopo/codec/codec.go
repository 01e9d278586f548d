// Package codec holds the user-pluggable encode/decode contract for a
// single operator's payload type, plus a default JSON implementation.
package codec

import "encoding/json"

// Codec bridges a typed value and the opaque byte-string payloads the
// wire envelope carries. Supplied per operator by the caller of
// CommunicationGroupClient.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// JSON is the default Codec, suitable when the caller has no reason to
// plug in something more specific. Mirrors the teacher's own choice of
// encoding/json for its wire envelope (pkg/mcast/core/transport.go).
type JSON[T any] struct{}

// NewJSON constructs a JSON-backed codec for T.
func NewJSON[T any]() JSON[T] {
	return JSON[T]{}
}

func (JSON[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (JSON[T]) Decode(data []byte) (T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	return value, err
}
