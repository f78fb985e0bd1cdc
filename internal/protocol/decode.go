package protocol

import (
	"encoding/json"
	"fmt"
)

type rawReply struct {
	Results *[]string `json:"Results"`
}

// DecodeReply parses a text frame payload into a reply envelope.
func DecodeReply(payload []byte) (Reply, error) {
	var raw rawReply
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if raw.Results == nil {
		return Reply{}, fmt.Errorf("%w: %w", ErrMalformedReply, ErrMissingResults)
	}
	results := *raw.Results
	if results == nil {
		results = []string{}
	}
	return Reply{Results: results}, nil
}

// DecodeRequest parses a command envelope. Used by fake devices in tests.
func DecodeRequest(payload []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return req, nil
}
