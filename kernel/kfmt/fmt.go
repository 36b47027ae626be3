// Package kfmt provides an allocation-free Printf variant that is safe to use
// from any kernel context, including trap handlers and the early boot path
// before a console has been registered.
package kfmt

import (
	"io"
	"unsafe"
)

// numBufSize bounds the digits, sign and padding of a formatted number.
const numBufSize = 32

var (
	missingArg  = []byte("(MISSING)")
	badArgType  = []byte("%!(WRONGTYPE)")
	missingVerb = []byte("%!(NOVERB)")
	extraArg    = []byte("%!(EXTRA)")
	falseText   = []byte("false")
	trueText    = []byte("true")

	numBuf [numBufSize]byte

	// byteBuf carries single characters into doWrite. Slicing a string or
	// the format argument directly would allocate.
	byteBuf = []byte{0}

	// earlyBuffer captures output generated before a console sink is
	// registered.
	earlyBuffer ringBuffer

	// outputSink receives Printf output; while nil, output accumulates in
	// earlyBuffer.
	outputSink io.Writer
)

// SetOutputSink registers w as the target for Printf output and drains any
// output buffered before the sink became available into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyBuffer)
	}
}

// Output returns a writer that always targets the active sink, falling back
// to the early buffer while no sink is registered. Callers can hold on to it
// across sink changes.
func Output() io.Writer {
	return sinkWriter{}
}

type sinkWriter struct{}

func (sinkWriter) Write(p []byte) (int, error) {
	doWrite(outputSink, p)
	return len(p), nil
}

// Printf formats its arguments to the registered output sink. It supports a
// subset of the fmt verbs:
//
//	%s	string or byte slice
//	%o	integer, base 8
//	%d	integer, base 10
//	%x	integer, base 16 with lower-case digits
//	%t	"true" or "false"
//
// An optional decimal width between the '%' and the verb left-pads the value:
// strings and base-10 integers pad with spaces, base-8 and base-16 integers
// pad with zeroes.
//
// Printf never allocates, which is what makes it legal inside trap handlers:
// an allocation there would re-enter the runtime while the interrupted
// context may hold runtime locks. For the same reason it cannot support %v or
// %p, both of which drag in reflection.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes to w instead of the registered sink.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var argIndex int

	for i := 0; i < len(format); {
		if format[i] != '%' {
			writeByte(w, format[i])
			i++
			continue
		}

		// Optional width digits between '%' and the verb.
		i++
		width := 0
		for ; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}

		if i == len(format) {
			doWrite(w, missingVerb)
			break
		}

		verb := format[i]
		i++

		if verb == '%' {
			writeByte(w, '%')
			continue
		}
		if argIndex >= len(args) {
			doWrite(w, missingArg)
			continue
		}

		switch verb {
		case 'o':
			emitInt(w, args[argIndex], 8, width)
		case 'd':
			emitInt(w, args[argIndex], 10, width)
		case 'x':
			emitInt(w, args[argIndex], 16, width)
		case 's':
			emitString(w, args[argIndex], width)
		case 't':
			emitBool(w, args[argIndex])
		default:
			doWrite(w, missingVerb)
			continue
		}
		argIndex++
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, extraArg)
	}
}

func emitBool(w io.Writer, v interface{}) {
	b, ok := v.(bool)
	if !ok {
		doWrite(w, badArgType)
		return
	}
	if b {
		doWrite(w, trueText)
	} else {
		doWrite(w, falseText)
	}
}

func emitString(w io.Writer, v interface{}, width int) {
	switch s := v.(type) {
	case string:
		for pad := width - len(s); pad > 0; pad-- {
			writeByte(w, ' ')
		}
		// Converting the string to a byte slice would allocate.
		for i := 0; i < len(s); i++ {
			writeByte(w, s[i])
		}
	case []byte:
		for pad := width - len(s); pad > 0; pad-- {
			writeByte(w, ' ')
		}
		doWrite(w, s)
	default:
		doWrite(w, badArgType)
	}
}

// emitInt formats v in the given base into numBuf back to front and writes
// the result. All built-in integer types are accepted.
func emitInt(w io.Writer, v interface{}, base, width int) {
	var (
		uval uint64
		neg  bool
	)

	switch t := v.(type) {
	case uint8:
		uval = uint64(t)
	case uint16:
		uval = uint64(t)
	case uint32:
		uval = uint64(t)
	case uint64:
		uval = t
	case uint:
		uval = uint64(t)
	case uintptr:
		uval = uint64(t)
	case int8:
		uval, neg = negAbs(int64(t))
	case int16:
		uval, neg = negAbs(int64(t))
	case int32:
		uval, neg = negAbs(int64(t))
	case int64:
		uval, neg = negAbs(t)
	case int:
		uval, neg = negAbs(int64(t))
	default:
		doWrite(w, badArgType)
		return
	}

	if width >= numBufSize {
		width = numBufSize - 1
	}

	pos := numBufSize
	for {
		pos--
		digit := byte(uval % uint64(base))
		if digit < 10 {
			numBuf[pos] = '0' + digit
		} else {
			numBuf[pos] = 'a' + digit - 10
		}
		if uval /= uint64(base); uval == 0 {
			break
		}
	}

	// A zero-padded value keeps the sign ahead of the padding; a
	// space-padded one keeps it next to the digits.
	if base == 10 {
		if neg {
			pos--
			numBuf[pos] = '-'
		}
		for numBufSize-pos < width {
			pos--
			numBuf[pos] = ' '
		}
	} else {
		for numBufSize-pos < width {
			pos--
			numBuf[pos] = '0'
		}
		if neg {
			pos--
			numBuf[pos] = '-'
		}
	}

	doWrite(w, numBuf[pos:])
}

func negAbs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}

func writeByte(w io.Writer, c byte) {
	byteBuf[0] = c
	doWrite(w, byteBuf)
}

// doWrite hides p from escape analysis before handing it to the sink. The
// sink is an unknown io.Writer, so without this the compiler must assume p
// escapes and every Printf call would allocate an argument pack.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis; copied from
// runtime/stubs.go.
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
