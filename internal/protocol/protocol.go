// Package protocol implements the versioned binary codec for the
// Minecraft wire format: primitive readers and writers with a
// remaining-length budget, compound field types, and a per-version
// message registry. Opcodes and field layouts change between protocol
// versions; both are resolved at run time so one binary can speak every
// supported version.
package protocol

// Version is the numeric protocol version negotiated at login.
type Version int32

const (
	// Version1_18_2 is the last version with the legacy key-packet layout.
	Version1_18_2 Version = 758
	// Version1_19_1 introduced the nonce-or-signature key-packet layout.
	Version1_19_1 Version = 760
)

// SupportedVersions lists the protocol versions the registry covers.
var SupportedVersions = []Version{Version1_18_2, Version1_19_1}

func (v Version) Supported() bool {
	for _, s := range SupportedVersions {
		if v == s {
			return true
		}
	}
	return false
}

// Direction of travel for a message, from the client's point of view.
type Direction int

const (
	Serverbound Direction = iota
	Clientbound
)

func (d Direction) String() string {
	if d == Serverbound {
		return "serverbound"
	}
	return "clientbound"
}

// FieldType is a compound value participating in wire serialization.
// Read consumes from a budgeted reader, Write appends to a growing
// container, Dump renders a structured diagnostic view.
type FieldType interface {
	Read(r *Reader) error
	Write(w *Writer) error
	Dump() map[string]any
}

// Message is a typed protocol message. Its opcode may depend on the
// protocol version; ID reports false when the message does not exist
// for that version.
type Message interface {
	FieldType
	Name() string
	ID(v Version) (int32, bool)
}
