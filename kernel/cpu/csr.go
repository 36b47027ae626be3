// Package cpu provides constants and accessors for the RISC-V control and
// status registers (CSRs) together with a small set of privileged
// instructions that the rest of the kernel builds on. The accessors are
// implemented in assembly; everything else in this package is portable and
// can be exercised by tests on any architecture.
package cpu

// Status describes the value of the mstatus/sstatus register. The supervisor
// view (sstatus) is a restricted window into the same hardware register, so
// one type covers both.
type Status uint64

// mstatus/sstatus fields.
const (
	// StatusSIE enables supervisor-mode interrupts while in supervisor mode.
	StatusSIE = Status(1) << 1

	// StatusMIE enables machine-mode interrupts while in machine mode.
	StatusMIE = Status(1) << 3

	// StatusSPIE records the interrupt-enable state that sret restores.
	StatusSPIE = Status(1) << 5

	// StatusMPIE records the interrupt-enable state that mret restores.
	StatusMPIE = Status(1) << 7

	// StatusSPP records the privilege level that sret returns to
	// (0 = user, 1 = supervisor).
	StatusSPP = Status(1) << 8

	// StatusMPPMask covers the two-bit field recording the privilege level
	// that mret returns to.
	StatusMPPMask       = Status(3) << 11
	StatusMPPUser       = Status(0) << 11
	StatusMPPSupervisor = Status(1) << 11
	StatusMPPMachine    = Status(3) << 11

	// StatusFSMask covers the two-bit floating-point unit state field.
	StatusFSMask = Status(3) << 13

	// FSOff marks the FPU as disabled; FP instructions trap.
	FSOff = Status(0) << 13

	// FSInitial marks the FPU as enabled but untouched since reset.
	FSInitial = Status(1) << 13

	// FSClean marks the FP registers as unmodified since the last context save.
	FSClean = Status(2) << 13

	// FSDirty marks the FP registers as modified since the last context save.
	FSDirty = Status(3) << 13
)

// FS extracts the floating-point state field from a status value.
func (s Status) FS() Status {
	return s & StatusFSMask
}

// WithFS returns a copy of s with the floating-point state field set to fs.
func (s Status) WithFS(fs Status) Status {
	return (s &^ StatusFSMask) | (fs & StatusFSMask)
}

// Interrupt-enable and interrupt-pending bits (mie/mip/sie/sip, and the
// matching mideleg positions).
const (
	IntSSoft  = uint64(1) << 1
	IntMSoft  = uint64(1) << 3
	IntSTimer = uint64(1) << 5
	IntMTimer = uint64(1) << 7
	IntSExt   = uint64(1) << 9
	IntMExt   = uint64(1) << 11
)

// Cause describes the value of the mcause/scause register.
type Cause uint64

// causeInterrupt is set on mcause/scause when the trap is an asynchronous
// interrupt rather than a synchronous exception.
const causeInterrupt = Cause(1) << 63

// Synchronous exception codes.
const (
	ExcInsnMisaligned  = Cause(0)
	ExcInsnAccess      = Cause(1)
	ExcIllegalInsn     = Cause(2)
	ExcBreakpoint      = Cause(3)
	ExcLoadMisaligned  = Cause(4)
	ExcLoadAccess      = Cause(5)
	ExcStoreMisaligned = Cause(6)
	ExcStoreAccess     = Cause(7)
	ExcEcallFromU      = Cause(8)
	ExcEcallFromS      = Cause(9)
	ExcEcallFromM      = Cause(11)
	ExcInsnPageFault   = Cause(12)
	ExcLoadPageFault   = Cause(13)
	ExcStorePageFault  = Cause(15)
)

// Interrupt cause codes (with the interrupt flag set).
const (
	IntCauseSSoft  = causeInterrupt | 1
	IntCauseSTimer = causeInterrupt | 5
	IntCauseSExt   = causeInterrupt | 9
)

// IsInterrupt returns true if the cause describes an asynchronous interrupt.
func (c Cause) IsInterrupt() bool {
	return c&causeInterrupt != 0
}

// Code returns the exception or interrupt code without the interrupt flag.
func (c Cause) Code() uint64 {
	return uint64(c &^ causeInterrupt)
}

// EcallInsnSize is the width in bytes of the ecall instruction. A handler
// that completes an environment call advances the saved pc by this amount so
// that resuming does not re-trap.
const EcallInsnSize = 4

// satp address-translation modes.
const (
	SatpModeBare = uint64(0) << 60
	SatpModeSv39 = uint64(8) << 60
	SatpModeSv48 = uint64(9) << 60
)

// MakeSatp composes an address-space-root descriptor from a translation
// mode, an address-space id and the physical address of the root table.
func MakeSatp(mode uint64, asid uint16, rootPA uintptr) uint64 {
	return mode | uint64(asid)<<44 | uint64(rootPA)>>12
}

// menvcfg fields.
const (
	// EnvcfgSTCE exposes the stimecmp CSR (the supervisor time-compare
	// extension) to supervisor mode. Declared as a typed 64-bit constant:
	// building this mask by shifting an immediate at runtime silently
	// truncates on assemblers that sign-extend 32-bit immediates.
	EnvcfgSTCE = uint64(1) << 63
)

// mcounteren/scounteren: one enable bit per hardware performance counter.
const CounterEnableAll = uint64(0xffffffff)

// Physical memory protection entry 0 configuration: one NAPOT region with
// read, write and execute permission.
const (
	PmpCfgR     = uint64(1) << 0
	PmpCfgW     = uint64(1) << 1
	PmpCfgX     = uint64(1) << 2
	PmpCfgNAPOT = uint64(3) << 3

	// PmpAddrFull is the NAPOT encoding covering the entire address space.
	PmpAddrFull = uint64(0x3fffffffffffff)
)

// Exception delegation mask: everything except the environment call taken
// from supervisor mode, which stays at machine level as the privileged
// service channel.
const DelegAllExceptions = ^uint64(0) &^ (uint64(1) << uint64(ExcEcallFromS))
