package kfmt

import "io"

// ringBufferSize is the capacity of the early output buffer. It must be a
// power of 2; one page's worth holds the full boot banner and any diagnostics
// emitted before the console driver attaches.
const ringBufferSize = 4096

// ringBuffer buffers Printf output until a sink is registered. When the
// buffer fills up the oldest bytes are dropped; the most recent output is the
// part worth keeping when diagnosing an early hang.
type ringBuffer struct {
	data           [ringBufferSize]byte
	rIndex, wIndex int
}

// Write appends p, discarding the oldest buffered bytes on overflow. It never
// fails.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.data[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
		}
	}

	return len(p), nil
}

// Read copies buffered bytes into p in write order and consumes them,
// returning io.EOF once the buffer is drained. A read never spans the wrap
// point; callers loop until EOF.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.rIndex == rb.wIndex {
		return 0, io.EOF
	}

	var n int
	if rb.rIndex < rb.wIndex {
		n = rb.wIndex - rb.rIndex
	} else {
		n = ringBufferSize - rb.rIndex
	}
	if n > len(p) {
		n = len(p)
	}

	copy(p, rb.data[rb.rIndex:rb.rIndex+n])
	rb.rIndex = (rb.rIndex + n) & (ringBufferSize - 1)

	return n, nil
}
