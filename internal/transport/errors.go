package transport

import "errors"

var (
	ErrTransport       = errors.New("transport: channel failure")
	ErrClosed          = errors.New("transport: channel closed")
	ErrInvalidEndpoint = errors.New("transport: invalid endpoint")
)
