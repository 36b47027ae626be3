package trap

import "github.com/mematrix/vos/kernel/cpu"

// ServiceID selects one of the privileged machine-level services reachable
// through an environment call taken in supervisor mode.
type ServiceID uint64

const (
	// ServiceHartID reads the hardware id of the calling hart.
	ServiceHartID ServiceID = iota

	// ServiceSetTimer arms the next timer interrupt at the current hardware
	// time plus the caller-supplied relative delta.
	ServiceSetTimer

	serviceCount
)

var (
	// machineServices maps a validated service id to its implementation.
	// Ids are bounds-checked against serviceCount before indexing.
	machineServices = [serviceCount]func(arg uint64) uint64{
		ServiceHartID:   serviceHartID,
		ServiceSetTimer: serviceSetTimer,
	}

	readMhartidFn func() uint64
	readTimeFn    func() uint64

	// setTimerCmpFn writes the calling hart's supervisor timer comparator.
	// Arming overwrites any previously armed target.
	setTimerCmpFn func(when uint64)

	// ecallFn issues the environment-call instruction with the service id
	// and argument in their designated registers.
	ecallFn func(id ServiceID, arg uint64) uint64
)

func serviceHartID(_ uint64) uint64 {
	return readMhartidFn()
}

func serviceSetTimer(delta uint64) uint64 {
	setTimerCmpFn(readTimeFn() + delta)
	return 0
}

// machineDispatch handles the one exception kept at machine level: an
// environment call taken while already in supervisor mode. It returns the
// service result and true when the call was serviced; any other cause or an
// out-of-range service id returns false, which the machine vector treats as
// fatal for the hart. Called from the machine trap vector.
func machineDispatch(cause cpu.Cause, id ServiceID, arg uint64) (uint64, bool) {
	if cause != cpu.ExcEcallFromS {
		return 0, false
	}

	if id >= serviceCount {
		return 0, false
	}

	return machineServices[id](arg), true
}

// HartID returns the hardware id of the calling hart via the machine-level
// service channel.
func HartID() uint64 {
	return ecallFn(ServiceHartID, 0)
}

// SetTimerRelative arms the next timer interrupt delta ticks from now. A
// delta of zero fires as soon as the interrupt is enabled. There is no
// cancel operation; re-arming overwrites the previous target.
func SetTimerRelative(delta uint64) {
	ecallFn(ServiceSetTimer, delta)
}
