package network

import "encoding/json"

// DecodeBatch interprets a delivery body as an ordered batch of event
// payloads. A bare object is treated as a batch of one.
func DecodeBatch(body []byte) ([]json.RawMessage, error) {
	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err == nil {
		return batch, nil
	}

	var single json.RawMessage
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []json.RawMessage{single}, nil
}
