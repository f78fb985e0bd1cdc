// Package transport owns the duplex message channel to a USB2SNES server.
//
// Ownership boundary:
// - Channel contract consumed by the client core
// - WebSocket implementation and dial configuration
// - connect retry/backoff
//
// Read timeouts, when configured, are applied here and never inside the
// protocol core.
package transport
