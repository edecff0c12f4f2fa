package rpc

import (
	"github.com/goccy/go-json"
)

// Codec carries plain Go structs as JSON. It registers under the "json" name so
// connect clients using the JSON content type reach it.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
