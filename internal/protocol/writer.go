package protocol

import "encoding/binary"

// Writer accumulates a message body. Writes cannot fail; the error
// return on Message.Write exists for compound types that validate
// their own shape before emitting it.
type Writer struct {
	buf []byte
	ver Version
}

func NewWriter(ver Version) *Writer {
	return &Writer{ver: ver}
}

func (w *Writer) Version() Version { return w.ver }

// Bytes returns the accumulated body. The slice aliases the writer's
// buffer; copy it if the writer outlives the use.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) WriteU8(v byte) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteI8(v int8) {
	w.WriteU8(byte(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(0x01)
	} else {
		w.WriteU8(0x00)
	}
}

func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteI16(v int16) {
	w.WriteU16(uint16(v))
}

func (w *Writer) WriteI32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteI64(v int64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

// WriteVarInt emits the canonical minimum-length encoding.
func (w *Writer) WriteVarInt(v int32) {
	u := uint32(v)
	for {
		b := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		w.buf = append(w.buf, b)
		if u == 0 {
			return
		}
	}
}

func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteByteArray emits a VarInt length prefix followed by the bytes.
func (w *Writer) WriteByteArray(b []byte) {
	w.WriteVarInt(int32(len(b)))
	w.WriteBytes(b)
}

func (w *Writer) WriteString(s string) {
	w.WriteByteArray([]byte(s))
}
