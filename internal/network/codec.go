package network

import "encoding/json"

// envelope is used to peek at the type tag of an inbound frame before
// the full payload is decoded.
type envelope struct {
	Type string `json:"type"`
}

// Encode marshals a message into a JSON frame.
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// PeekType extracts the type tag from a raw frame without decoding the
// rest of the payload.
func PeekType(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", err
	}
	return env.Type, nil
}

// Decode unmarshals a raw frame into the message struct for its type.
// The second argument should be a pointer to the struct you want to
// decode into.
func Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
