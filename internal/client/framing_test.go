package client

import (
	"bufio"
	"bytes"
	"errors"
	"testing"
)

func TestFramer_RoundTripUncompressed(t *testing.T) {
	f := &Framer{Threshold: -1}
	payload := []byte{0x01, 0x02, 0x01, 0x01, 0xAA}

	var buf bytes.Buffer
	if err := f.WriteFrame(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	// VarInt length prefix then the raw payload.
	if want := append([]byte{0x05}, payload...); !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("frame: got % X want % X", buf.Bytes(), want)
	}

	got, err := f.ReadFrame(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got % X want % X", got, payload)
	}
}

func TestFramer_BelowThresholdStaysRaw(t *testing.T) {
	f := &Framer{Threshold: 256}
	payload := []byte{0x13, 0x00, 0x01}

	var buf bytes.Buffer
	if err := f.WriteFrame(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	// length, data_length=0, raw payload.
	want := append([]byte{0x04, 0x00}, payload...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("frame: got % X want % X", buf.Bytes(), want)
	}

	got, err := f.ReadFrame(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got % X want % X", got, payload)
	}
}

func TestFramer_CompressedRoundTrip(t *testing.T) {
	f := &Framer{Threshold: 16}
	payload := bytes.Repeat([]byte{0x42}, 500)

	var buf bytes.Buffer
	if err := f.WriteFrame(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() >= len(payload) {
		t.Fatalf("repetitive payload did not compress: %d >= %d", buf.Len(), len(payload))
	}

	got, err := f.ReadFrame(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestFramer_TruncatedFrame(t *testing.T) {
	f := &Framer{Threshold: -1}
	// Length says 10, stream has 2.
	br := bufio.NewReader(bytes.NewReader([]byte{0x0A, 0x01, 0x02}))
	if _, err := f.ReadFrame(br); err == nil {
		t.Fatalf("expected error on truncated frame")
	}
}

func TestFramer_OversizedFrameRejected(t *testing.T) {
	f := &Framer{Threshold: -1}
	// Length prefix far beyond MaxFrameSize.
	prefix := appendVarInt(nil, int32(MaxFrameSize+1))
	br := bufio.NewReader(bytes.NewReader(prefix))
	if _, err := f.ReadFrame(br); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("got %v want %v", err, ErrFrameTooLarge)
	}
}
