package cpu

// ReadSstatus returns the supervisor status register.
func ReadSstatus() Status

// WriteSstatus replaces the supervisor status register.
func WriteSstatus(v Status)

// WriteSie replaces the supervisor interrupt-enable register.
func WriteSie(v uint64)

// WriteStvec installs the supervisor trap vector address.
func WriteStvec(addr uintptr)

// ReadSscratch returns the supervisor scratch register. Outside of a trap the
// scratch register holds the address of the running context's trap frame.
func ReadSscratch() uintptr

// WriteSscratch replaces the supervisor scratch register.
func WriteSscratch(v uintptr)

// ReadSepc returns the supervisor exception program counter.
func ReadSepc() uintptr

// WriteSepc sets the address that the next sret resumes at.
func WriteSepc(pc uintptr)

// ReadScause returns the supervisor trap cause register.
func ReadScause() Cause

// ReadStval returns the supervisor trap value register.
func ReadStval() uintptr

// WriteStimecmp arms the executing hart's supervisor timer comparator: a
// supervisor timer interrupt becomes pending once the time counter reaches
// v. Requires the Sstc extension, enabled via menvcfg at boot.
func WriteStimecmp(v uint64)

// WriteSatp installs an address-space-root descriptor. Callers must issue
// SFenceVMA afterwards to discard stale cached translations.
func WriteSatp(v uint64)

// WriteMstatus replaces the machine status register.
func WriteMstatus(v Status)

// ReadMepc returns the machine exception program counter.
func ReadMepc() uintptr

// WriteMepc sets the address that the next mret resumes at.
func WriteMepc(pc uintptr)

// ReadMcause returns the machine trap cause register.
func ReadMcause() Cause

// WriteMtvec installs the machine trap vector address.
func WriteMtvec(addr uintptr)

// WriteMedeleg routes the synchronous exceptions selected by mask directly to
// the supervisor trap vector.
func WriteMedeleg(mask uint64)

// WriteMideleg routes the interrupts selected by mask directly to the
// supervisor trap vector.
func WriteMideleg(mask uint64)

// WriteMcounteren exposes the selected hardware performance counters to
// supervisor mode.
func WriteMcounteren(v uint64)

// WriteMenvcfg replaces the machine environment configuration register.
func WriteMenvcfg(v uint64)

// WritePmpcfg0 replaces the first physical-memory-protection configuration
// register.
func WritePmpcfg0(v uint64)

// WritePmpaddr0 replaces the first physical-memory-protection address
// register.
func WritePmpaddr0(v uint64)

// ReadMhartid returns the hardware thread id of the executing hart.
func ReadMhartid() uint64

// ReadTime returns the current value of the real-time counter.
func ReadTime() uint64

// EnableInterrupts enables supervisor-mode interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables supervisor-mode interrupt handling.
func DisableInterrupts()

// SFenceVMA flushes all cached address translations on this hart.
func SFenceVMA()

// Halt parks the executing hart in a permanent interrupt-wait loop. It never
// returns.
func Halt()
