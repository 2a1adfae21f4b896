package protocol

import "errors"

var (
	// ErrUnderflow means a read went past the remaining-length budget.
	// The whole message must be discarded.
	ErrUnderflow = errors.New("protocol: read past end of message")

	// ErrMalformed means a primitive violated its encoding, e.g. a
	// VarInt longer than five bytes or a negative array length.
	ErrMalformed = errors.New("protocol: malformed field")

	// ErrUnknownOpcode means the registry has no message for the
	// (version, direction, opcode) triple.
	ErrUnknownOpcode = errors.New("protocol: unknown opcode")

	// ErrUnknownVersion means the protocol version is not supported.
	ErrUnknownVersion = errors.New("protocol: unsupported protocol version")
)
