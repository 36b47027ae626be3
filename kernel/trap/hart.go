package trap

import (
	"unsafe"

	"github.com/mematrix/vos/kernel"
	"github.com/mematrix/vos/kernel/mem"
)

// MaxHarts bounds the number of hardware threads this kernel supports. The
// qemu virt machine models at most eight.
const MaxHarts = 8

var errHartRange = &kernel.Error{Module: "trap", Message: "hart id out of range"}

// CPUInfo is the per-hart control block. The thread-pointer value in the
// hart frame identifies the hart by pointing here.
type CPUInfo struct {
	// HartID caches the hardware thread id; reading the mhartid CSR from
	// supervisor mode requires a round trip through the machine-level
	// service channel.
	HartID uint64

	// Freq is the timebase frequency reported by the device tree.
	Freq uint64
}

// TickInterval returns the timer period, in timebase ticks, used for
// preemption: 100 ticks per second.
func (c *CPUInfo) TickInterval() uint64 {
	return c.Freq / 100
}

// trapStackSize pads TrapStack to exactly one page: the stack bytes, one
// reserved word, the CPUInfo block and the HartFrame.
const trapStackSize = mem.PageSize - 8 - unsafe.Sizeof(CPUInfo{}) - unsafe.Sizeof(HartFrame{})

// TrapStack is the per-hart page holding the stack that the trap dispatcher
// switches onto, together with the hart's info blocks at the top of the
// page. The stack grows down from the reserved word.
type TrapStack struct {
	stack    [trapStackSize]byte
	reserved uintptr
	Info     CPUInfo
	Frame    HartFrame
}

var trapStacks [MaxHarts]TrapStack

// InitHart populates the executing hart's trap stack page and returns its
// hart frame. The frame values are fixed for the hart's lifetime after this
// call.
func InitHart(hartID, freq uint64, gp uintptr) (*HartFrame, *kernel.Error) {
	if hartID >= MaxHarts {
		return nil, errHartRange
	}

	ts := &trapStacks[hartID]
	ts.Info = CPUInfo{HartID: hartID, Freq: freq}
	ts.Frame = HartFrame{
		StackTop: uintptr(unsafe.Pointer(&ts.reserved)),
		GP:       gp,
		TP:       uintptr(unsafe.Pointer(&ts.Info)),
	}

	return &ts.Frame, nil
}

// HartInfoOf returns the control block of the given hart.
func HartInfoOf(hartID uint64) *CPUInfo {
	return &trapStacks[hartID].Info
}
