package core

import "encoding/json"

// Envelope is the wire shape of every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode wraps data into an envelope. json.RawMessage payloads are
// embedded verbatim.
func Encode(event string, data any) (Frame, error) {
	env := Envelope{Event: event}
	if data != nil {
		raw, ok := data.(json.RawMessage)
		if !ok {
			b, err := json.Marshal(data)
			if err != nil {
				return nil, err
			}
			raw = b
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

func Decode(b []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(b, &env)
	return env, err
}
