package protocol

import (
	"encoding/json"
	"fmt"
)

// NewRequest builds the envelope for cmd. Flags and operands are never nil so
// they encode as empty lists.
func NewRequest(cmd Command, space Space, operands []string) Request {
	ops := make([]string, len(operands))
	copy(ops, operands)
	return Request{
		Opcode:   cmd.String(),
		Space:    string(space),
		Flags:    []string{},
		Operands: ops,
	}
}

// EncodeRequest serializes a command envelope. Identical inputs always yield
// byte-identical output.
func EncodeRequest(cmd Command, space Space, operands []string) ([]byte, error) {
	payload, err := json.Marshal(NewRequest(cmd, space, operands))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, cmd, err)
	}
	return payload, nil
}

// EncodeReply serializes a reply envelope. A nil result list encodes as [].
func EncodeReply(reply Reply) ([]byte, error) {
	if reply.Results == nil {
		reply.Results = []string{}
	}
	payload, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: reply: %v", ErrEncode, err)
	}
	return payload, nil
}
