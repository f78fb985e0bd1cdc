// Package protocol owns the USB2SNES wire contract.
//
// Ownership boundary:
// - request envelope encoding (opcode, space, flags, operands)
// - reply envelope decoding
// - typed decoding of positional reply results
// - hex operand formatting
//
// Binary payload framing lives in the frame subpackage.
package protocol
