package protocol

import "fmt"

// ServerboundKeyPacket is the login encryption-key message. Up to
// protocol 758 the body is key bytes followed by an encrypted nonce.
// Later versions add a boolean: true means an encrypted nonce follows,
// false means a SaltSignature follows instead. The flag on the wire
// denotes has-nonce; the writer derives it from which body is present,
// never from the signature field alone.
type ServerboundKeyPacket struct {
	KeyBytes []byte

	// HasNonce selects the nonce branch on versions above 758. On
	// legacy versions the nonce is the only option and the flag is
	// implied.
	HasNonce      bool
	Nonce         []byte
	SaltSignature SaltSignature
}

func (p *ServerboundKeyPacket) Name() string { return "Key" }

func (p *ServerboundKeyPacket) ID(v Version) (int32, bool) {
	if !v.Supported() {
		return 0, false
	}
	return 0x01, true
}

func (p *ServerboundKeyPacket) Read(r *Reader) error {
	var err error
	if p.KeyBytes, err = r.ReadByteArray(); err != nil {
		return fmt.Errorf("key_bytes: %w", err)
	}
	if r.Version() <= Version1_18_2 {
		p.HasNonce = true
		if p.Nonce, err = r.ReadByteArray(); err != nil {
			return fmt.Errorf("nonce: %w", err)
		}
		return nil
	}
	if p.HasNonce, err = r.ReadBool(); err != nil {
		return fmt.Errorf("has_nonce: %w", err)
	}
	if p.HasNonce {
		if p.Nonce, err = r.ReadByteArray(); err != nil {
			return fmt.Errorf("nonce: %w", err)
		}
		return nil
	}
	if err := p.SaltSignature.Read(r); err != nil {
		return fmt.Errorf("salt_signature: %w", err)
	}
	return nil
}

func (p *ServerboundKeyPacket) Write(w *Writer) error {
	w.WriteByteArray(p.KeyBytes)
	if w.Version() <= Version1_18_2 {
		w.WriteByteArray(p.Nonce)
		return nil
	}
	w.WriteBool(p.HasNonce)
	if p.HasNonce {
		w.WriteByteArray(p.Nonce)
		return nil
	}
	return p.SaltSignature.Write(w)
}

func (p *ServerboundKeyPacket) Dump() map[string]any {
	out := map[string]any{
		"key_bytes": fmt.Sprintf("%d bytes", len(p.KeyBytes)),
	}
	if p.HasNonce {
		out["nonce"] = fmt.Sprintf("%d bytes", len(p.Nonce))
	} else {
		out["salt_signature"] = p.SaltSignature.Dump()
	}
	return out
}
