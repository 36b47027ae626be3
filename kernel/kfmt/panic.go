package kfmt

import (
	"github.com/mematrix/vos/kernel"
)

var (
	// cpuHaltFn parks the hart after the panic banner; mocked by tests.
	cpuHaltFn func()

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
)

// Panic outputs the supplied error (if not nil) to the console and parks the
// executing hart. Calls to Panic never return.
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	Printf("\n-----------------------------------\n")
	if err != nil {
		Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Printf("*** kernel panic: hart halted ***")
	Printf("\n-----------------------------------\n")

	cpuHaltFn()
}
