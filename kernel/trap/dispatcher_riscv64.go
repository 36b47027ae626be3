package trap

import (
	"github.com/mematrix/vos/kernel/cpu"
)

func init() {
	readSstatusFn = cpu.ReadSstatus
	writeSstatusFn = cpu.WriteSstatus
	readSepcFn = cpu.ReadSepc
	writeSepcFn = cpu.WriteSepc
	readScauseFn = cpu.ReadScause
	readStvalFn = cpu.ReadStval
	readSscratchFn = cpu.ReadSscratch
	writeSscratchFn = cpu.WriteSscratch
	fpSaveFn = fpSave
	fpLoadFn = fpLoad
	fpZeroFn = fpZero
	haltFn = cpu.Halt
	switchFn = contextSwitch
	readMhartidFn = cpu.ReadMhartid
	readTimeFn = cpu.ReadTime
	setTimerCmpFn = cpu.WriteStimecmp
	ecallFn = ecall
}

// VectorAddr returns the address of the supervisor trap vector for
// installation into stvec.
func VectorAddr() uintptr

// MachineVectorAddr returns the address of the machine trap vector for
// installation into mtvec.
func MachineVectorAddr() uintptr

// supervisorVec is the supervisor trap vector. It saves the interrupted
// context's general registers into its frame using the scratch-register swap
// protocol, switches onto this hart's trap stack, calls dispatch, restores
// the general registers of the frame the scratch register points at on
// return and executes sret.
func supervisorVec()

// machineVec is the machine trap vector. It forwards the environment-call
// service id and argument to machineTrap and returns to the interrupted
// supervisor context via mret.
func machineVec()

// fpSave stores the 32 floating-point registers into slots.
func fpSave(slots *[NumRegs]uint64)

// fpLoad loads the 32 floating-point registers from slots.
func fpLoad(slots *[NumRegs]uint64)

// fpZero sets the 32 floating-point registers to architectural zero without
// any memory access.
func fpZero()

// contextSwitch restores the general registers from frame and executes sret.
// It never returns.
func contextSwitch(frame *Frame)

// ecall issues the environment-call instruction with id in A7 and arg in A0,
// returning the value the service left in A0.
func ecall(id ServiceID, arg uint64) uint64

// machineTrap services an environment call taken in supervisor mode. Any
// other cause, and any out-of-range service id, parks the hart: such traps
// indicate an unsupported or corrupted machine-level condition with no
// defined recovery. On success the saved return address is advanced past the
// environment-call instruction so the caller does not re-trap on resume.
// Called from machineVec.
func machineTrap(id ServiceID, arg uint64) uint64 {
	ret, ok := machineDispatch(cpu.ReadMcause(), id, arg)
	if !ok {
		cpu.Halt()
	}

	cpu.WriteMepc(cpu.ReadMepc() + cpu.EcallInsnSize)
	return ret
}
