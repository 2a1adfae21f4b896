package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestSaltSignature_WireLayout(t *testing.T) {
	s := SaltSignature{Salt: 0x0102030405060708, Signature: []byte{0xDE, 0xAD}}
	w := NewWriter(Version1_19_1)
	if err := s.Write(w); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x02, 0xDE, 0xAD}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("got % X want % X", w.Bytes(), want)
	}

	var back SaltSignature
	r := NewReader(w.Bytes(), Version1_19_1)
	if err := back.Read(r); err != nil {
		t.Fatalf("read: %v", err)
	}
	if back.Salt != s.Salt || !bytes.Equal(back.Signature, s.Signature) {
		t.Fatalf("round trip: got %+v want %+v", back, s)
	}
}

func TestKeyPacket_ModernNonce(t *testing.T) {
	p := &ServerboundKeyPacket{
		KeyBytes: []byte{0x01, 0x02},
		HasNonce: true,
		Nonce:    []byte{0xAA},
	}
	body, err := Encode(Version1_19_1, p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x02, 0x01, 0x02, 0x01, 0x01, 0xAA}
	if !bytes.Equal(body, want) {
		t.Fatalf("got % X want % X", body, want)
	}

	id, ok := p.ID(Version1_19_1)
	if !ok || id != 0x01 {
		t.Fatalf("id: got %#x ok=%v", id, ok)
	}
	if p.Name() != "Key" {
		t.Fatalf("name: got %q", p.Name())
	}
}

func TestKeyPacket_ModernSaltSignature(t *testing.T) {
	p := &ServerboundKeyPacket{
		KeyBytes:      []byte{0x10, 0x20, 0x30},
		HasNonce:      false,
		SaltSignature: SaltSignature{Salt: -1, Signature: []byte{0x7F}},
	}
	body, err := Encode(Version1_19_1, p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// key array, has_nonce=false, then the embedded salt+signature.
	want := []byte{
		0x03, 0x10, 0x20, 0x30,
		0x00,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0x01, 0x7F,
	}
	if !bytes.Equal(body, want) {
		t.Fatalf("got % X want % X", body, want)
	}

	back := &ServerboundKeyPacket{}
	if err := back.Read(NewReader(body, Version1_19_1)); err != nil {
		t.Fatalf("read: %v", err)
	}
	if back.HasNonce {
		t.Fatalf("has_nonce flag survived as true")
	}
	if back.SaltSignature.Salt != -1 || !bytes.Equal(back.SaltSignature.Signature, []byte{0x7F}) {
		t.Fatalf("salt_signature: got %+v", back.SaltSignature)
	}
}

func TestKeyPacket_LegacyLayout(t *testing.T) {
	p := &ServerboundKeyPacket{
		KeyBytes: []byte{0x0A, 0x0B},
		HasNonce: true,
		Nonce:    []byte{0xCC, 0xDD},
	}
	body, err := Encode(Version1_18_2, p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// No flag byte on 758: key array then nonce array.
	want := []byte{0x02, 0x0A, 0x0B, 0x02, 0xCC, 0xDD}
	if !bytes.Equal(body, want) {
		t.Fatalf("got % X want % X", body, want)
	}

	back := &ServerboundKeyPacket{}
	if err := back.Read(NewReader(body, Version1_18_2)); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !back.HasNonce || !bytes.Equal(back.Nonce, p.Nonce) {
		t.Fatalf("legacy round trip: got %+v", back)
	}
}

func TestKeyPacket_RoundTripBothVersions(t *testing.T) {
	for _, v := range SupportedVersions {
		p := &ServerboundKeyPacket{
			KeyBytes: []byte{1, 2, 3, 4},
			HasNonce: true,
			Nonce:    []byte{9, 8, 7},
		}
		body, err := Encode(v, p)
		if err != nil {
			t.Fatalf("v%d encode: %v", v, err)
		}
		back := &ServerboundKeyPacket{}
		if err := back.Read(NewReader(body, v)); err != nil {
			t.Fatalf("v%d read: %v", v, err)
		}
		reBody, err := Encode(v, back)
		if err != nil {
			t.Fatalf("v%d re-encode: %v", v, err)
		}
		if !bytes.Equal(body, reBody) {
			t.Fatalf("v%d: bytes changed across a decode/encode cycle", v)
		}
	}
}

func TestKeyPacket_Truncated(t *testing.T) {
	// Claims 4 key bytes, delivers 1.
	body := []byte{0x04, 0xAB}
	p := &ServerboundKeyPacket{}
	if err := p.Read(NewReader(body, Version1_19_1)); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("got %v want %v", err, ErrUnderflow)
	}
}

func TestKeyPacket_Dump(t *testing.T) {
	p := &ServerboundKeyPacket{KeyBytes: make([]byte, 16), HasNonce: true, Nonce: make([]byte, 4)}
	d := p.Dump()
	if d["key_bytes"] != "16 bytes" {
		t.Fatalf("key_bytes dump: got %v", d["key_bytes"])
	}
	if _, ok := d["salt_signature"]; ok {
		t.Fatalf("nonce branch must not dump salt_signature")
	}

	p = &ServerboundKeyPacket{SaltSignature: SaltSignature{Salt: 5}}
	if _, ok := p.Dump()["salt_signature"]; !ok {
		t.Fatalf("signature branch must dump salt_signature")
	}
}
