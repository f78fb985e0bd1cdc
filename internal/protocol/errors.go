package protocol

import "errors"

var (
	ErrMalformedReply   = errors.New("protocol: malformed reply")
	ErrMalformedRequest = errors.New("protocol: malformed request")
	ErrMissingResults   = errors.New("protocol: reply missing results")
	ErrUnexpectedFrame  = errors.New("protocol: unexpected frame kind")
	ErrShortReply       = errors.New("protocol: reply results out of range")
	ErrInvalidHex       = errors.New("protocol: invalid hex operand")
	ErrEncode           = errors.New("protocol: encode failed")
)
