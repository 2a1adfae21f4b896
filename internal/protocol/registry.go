package protocol

import "fmt"

// The registry maps (version, direction, opcode) to a message
// constructor. It is built once at init from the message prototypes;
// a message absent from a version simply has no entry there.

type registryKey struct {
	ver Version
	dir Direction
	id  int32
}

var registry = map[registryKey]func() Message{}

func register(dir Direction, ctor func() Message) {
	proto := ctor()
	for _, v := range SupportedVersions {
		id, ok := proto.ID(v)
		if !ok {
			continue
		}
		key := registryKey{ver: v, dir: dir, id: id}
		if _, dup := registry[key]; dup {
			panic(fmt.Sprintf("protocol: duplicate opcode 0x%02X for %s v%d", id, dir, v))
		}
		registry[key] = ctor
	}
}

func init() {
	register(Serverbound, func() Message { return &ServerboundKeyPacket{} })
	register(Clientbound, func() Message { return &ClientboundSetSlot{} })
	register(Clientbound, func() Message { return &ClientboundWindowItems{} })
	register(Clientbound, func() Message { return &ClientboundOpenWindow{} })
	register(Clientbound, func() Message { return &ClientboundHeldItemChange{} })
}

// New returns a fresh message for the opcode, or ErrUnknownOpcode.
func New(v Version, dir Direction, id int32) (Message, error) {
	if !v.Supported() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, v)
	}
	ctor, ok := registry[registryKey{ver: v, dir: dir, id: id}]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X (%s, v%d)", ErrUnknownOpcode, id, dir, v)
	}
	return ctor(), nil
}

// Decode parses a full message body for the given opcode. A partial
// read discards the message: only the whole-message result is usable.
func Decode(v Version, dir Direction, id int32, body []byte) (Message, error) {
	msg, err := New(v, dir, id)
	if err != nil {
		return nil, err
	}
	r := NewReader(body, v)
	if err := msg.Read(r); err != nil {
		return nil, fmt.Errorf("%s: %w", msg.Name(), err)
	}
	return msg, nil
}

// Encode renders a message body (without opcode framing) for the
// given version. It fails when the message does not exist there.
func Encode(v Version, msg Message) ([]byte, error) {
	if _, ok := msg.ID(v); !ok {
		return nil, fmt.Errorf("%w: %s has no opcode for v%d", ErrUnknownVersion, msg.Name(), v)
	}
	w := NewWriter(v)
	if err := msg.Write(w); err != nil {
		return nil, fmt.Errorf("%s: %w", msg.Name(), err)
	}
	return w.Bytes(), nil
}
