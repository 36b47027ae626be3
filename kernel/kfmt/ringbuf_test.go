package kfmt

import (
	"bytes"
	"io"
	"testing"
)

func TestRingBufferReadWrite(t *testing.T) {
	var rb ringBuffer

	if _, err := rb.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("expected EOF from an empty buffer; got %v", err)
	}

	payload := []byte("the quick brown fox jumps over the lazy dog")
	if n, err := rb.Write(payload); n != len(payload) || err != nil {
		t.Fatalf("expected write of %d bytes to succeed; got %d, %v", len(payload), n, err)
	}

	var drained bytes.Buffer
	if _, err := io.Copy(&drained, &rb); err != nil {
		t.Fatal(err)
	}
	if got := drained.String(); got != string(payload) {
		t.Fatalf("expected to drain %q; got %q", payload, got)
	}

	if _, err := rb.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("expected EOF after draining; got %v", err)
	}
}

func TestRingBufferOverflowKeepsNewestBytes(t *testing.T) {
	var rb ringBuffer

	// Overfill by 16 bytes; the 16 oldest (plus the slot consumed by the
	// full/empty distinction) must be gone.
	for i := 0; i < ringBufferSize+16; i++ {
		rb.Write([]byte{byte(i)})
	}

	var drained bytes.Buffer
	if _, err := io.Copy(&drained, &rb); err != nil {
		t.Fatal(err)
	}

	out := drained.Bytes()
	if len(out) != ringBufferSize-1 {
		t.Fatalf("expected %d bytes after overflow; got %d", ringBufferSize-1, len(out))
	}
	for i, b := range out {
		if exp := byte(i + 17); b != exp {
			t.Fatalf("expected byte %d to be %d; got %d", i, exp, b)
		}
	}
}

func TestRingBufferWrapAroundRead(t *testing.T) {
	var rb ringBuffer

	// Advance the indices close to the end so the next write wraps.
	pad := make([]byte, ringBufferSize-4)
	rb.Write(pad)
	io.Copy(io.Discard, &rb)

	rb.Write([]byte("wrap-around"))

	var drained bytes.Buffer
	if _, err := io.Copy(&drained, &rb); err != nil {
		t.Fatal(err)
	}
	if got := drained.String(); got != "wrap-around" {
		t.Fatalf("expected %q; got %q", "wrap-around", got)
	}
}
