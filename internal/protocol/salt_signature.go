package protocol

import "fmt"

// SaltSignature carries the salted signature a client sends in place
// of an encrypted nonce on protocol versions above 758. Wire layout:
// 8-byte big-endian signed salt, VarInt signature length, signature
// bytes.
type SaltSignature struct {
	Salt      int64
	Signature []byte
}

func (s *SaltSignature) Read(r *Reader) error {
	var err error
	if s.Salt, err = r.ReadI64(); err != nil {
		return fmt.Errorf("salt: %w", err)
	}
	if s.Signature, err = r.ReadByteArray(); err != nil {
		return fmt.Errorf("signature: %w", err)
	}
	return nil
}

func (s *SaltSignature) Write(w *Writer) error {
	w.WriteI64(s.Salt)
	w.WriteByteArray(s.Signature)
	return nil
}

func (s *SaltSignature) Dump() map[string]any {
	return map[string]any{
		"salt":      s.Salt,
		"signature": fmt.Sprintf("%d bytes", len(s.Signature)),
	}
}
