package kfmt

import "io"

// PrefixWriter wraps an io.Writer and injects a prefix at the beginning of
// each output line. The console attaches one per subsystem so interleaved
// kernel messages stay attributable.
type PrefixWriter struct {
	// Sink receives all writes.
	Sink io.Writer

	// Prefix is injected at the start of each line.
	Prefix []byte

	midLine bool
}

// Write forwards p to the sink, inserting the prefix after every newline that
// is followed by more output. Injected prefix bytes are not counted in the
// returned length.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written, start int

	for cur := 0; cur < len(p); cur++ {
		if !w.midLine {
			w.Sink.Write(w.Prefix)
			w.midLine = true
		}

		if p[cur] != '\n' {
			continue
		}

		n, err := w.Sink.Write(p[start : cur+1])
		written += n
		w.midLine = false
		start = cur + 1
		if err != nil {
			return written, err
		}
	}

	if start < len(p) {
		n, err := w.Sink.Write(p[start:])
		written += n
		if err != nil {
			return written, err
		}
	}

	return written, nil
}
