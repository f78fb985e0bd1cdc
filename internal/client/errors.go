package client

import "errors"

var (
	ErrNotConnected  = errors.New("client: not connected")
	ErrNoDevice      = errors.New("client: no matching device")
	ErrInvalidRegion = errors.New("client: invalid region")
)
