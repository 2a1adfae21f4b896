// Package client is the transport glue between a server connection and
// the codec: frame splitting, optional zlib compression, and the
// dispatch loop that routes decoded messages to their handlers.
package client

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"craftbot.dev/internal/protocol"
)

// MaxFrameSize bounds a single frame; anything larger is treated as a
// corrupted stream.
const MaxFrameSize = 1 << 21

var ErrFrameTooLarge = errors.New("client: frame exceeds size limit")

// Framer splits the byte stream into packet payloads (opcode VarInt
// followed by the message body). Threshold < 0 disables compression;
// otherwise payloads of at least Threshold bytes travel zlib-compressed
// behind an uncompressed-size prefix, matching the server-negotiated
// frame shape.
type Framer struct {
	Threshold int
}

func readStreamVarInt(br io.ByteReader) (int32, error) {
	var out uint32
	for i := 0; i < protocol.MaxVarIntBytes; i++ {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		out |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(out), nil
		}
	}
	return 0, fmt.Errorf("%w: frame varint longer than %d bytes", protocol.ErrMalformed, protocol.MaxVarIntBytes)
}

func appendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for {
		b := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if u == 0 {
			return dst
		}
	}
}

// ReadFrame returns the next packet payload, decompressed if needed.
func (f *Framer) ReadFrame(br *bufio.Reader) ([]byte, error) {
	length, err := readStreamVarInt(br)
	if err != nil {
		return nil, err
	}
	if length < 0 || length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}
	frame := make([]byte, length)
	if _, err := io.ReadFull(br, frame); err != nil {
		return nil, err
	}
	if f.Threshold < 0 {
		return frame, nil
	}

	r := protocol.NewReader(frame, 0)
	dataLen, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("data length: %w", err)
	}
	rest, err := r.ReadBytes(r.Remaining())
	if err != nil {
		return nil, err
	}
	if dataLen == 0 {
		// Below the threshold: sent uncompressed.
		return rest, nil
	}
	if dataLen > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes uncompressed", ErrFrameTooLarge, dataLen)
	}
	zr, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer zr.Close()
	out := make([]byte, dataLen)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("zlib body: %w", err)
	}
	return out, nil
}

// WriteFrame frames a packet payload onto the stream.
func (f *Framer) WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}

	var frame []byte
	if f.Threshold < 0 {
		frame = appendVarInt(nil, int32(len(payload)))
		frame = append(frame, payload...)
	} else if len(payload) < f.Threshold {
		body := appendVarInt([]byte{}, 0)
		body = append(body, payload...)
		frame = appendVarInt(nil, int32(len(body)))
		frame = append(frame, body...)
	} else {
		var zbuf bytes.Buffer
		zw := zlib.NewWriter(&zbuf)
		if _, err := zw.Write(payload); err != nil {
			return fmt.Errorf("zlib: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("zlib: %w", err)
		}
		body := appendVarInt(nil, int32(len(payload)))
		body = append(body, zbuf.Bytes()...)
		frame = appendVarInt(nil, int32(len(body)))
		frame = append(frame, body...)
	}

	_, err := w.Write(frame)
	return err
}
