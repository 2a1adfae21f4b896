package protocol

import (
	"encoding/binary"
	"fmt"
)

// MaxVarIntBytes is the longest legal VarInt encoding (32-bit payload,
// 7 bits per byte).
const MaxVarIntBytes = 5

// Reader consumes a message body. Every read decrements the
// remaining-length budget; reading past the end fails with
// ErrUnderflow and leaves the message in an indeterminate state.
// The protocol version is carried so field layouts can branch.
type Reader struct {
	buf []byte
	off int
	rem int
	ver Version
}

func NewReader(body []byte, ver Version) *Reader {
	return &Reader{buf: body, rem: len(body), ver: ver}
}

func (r *Reader) Version() Version { return r.ver }

// Remaining reports how many bytes of the budget are left.
func (r *Reader) Remaining() int { return r.rem }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrMalformed, n)
	}
	if n > r.rem {
		return nil, fmt.Errorf("%w: need %d bytes, %d remaining", ErrUnderflow, n, r.rem)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	r.rem -= n
	return b, nil
}

func (r *Reader) ReadU8() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadI8() (int8, error) {
	b, err := r.ReadU8()
	return int8(b), err
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadU8()
	return b != 0, err
}

func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

func (r *Reader) ReadI32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (r *Reader) ReadI64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// ReadVarInt decodes a base-128 variable-length integer: 7-bit groups,
// least significant first, high bit set on continuation. Signed values
// are the two's-complement reinterpretation of the 32-bit pattern.
func (r *Reader) ReadVarInt() (int32, error) {
	var out uint32
	for i := 0; i < MaxVarIntBytes; i++ {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		out |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(out), nil
		}
	}
	return 0, fmt.Errorf("%w: varint longer than %d bytes", ErrMalformed, MaxVarIntBytes)
}

// ReadBytes reads exactly n raw bytes. The returned slice is a copy.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadByteArray reads a VarInt length prefix followed by that many
// raw bytes.
func (r *Reader) ReadByteArray() ([]byte, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int(n))
}

// ReadString reads a VarInt-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadByteArray()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
