// Package hal probes the registered device drivers against the device tree
// and wires the discovered devices into the kernel.
package hal

import (
	"sort"

	"github.com/mematrix/vos/device"
	"github.com/mematrix/vos/kernel/hal/fdt"
	"github.com/mematrix/vos/kernel/kfmt"
)

// maxActiveDrivers bounds the number of initialized drivers. Probing runs
// before any memory allocator exists, so the device list uses fixed storage.
const maxActiveDrivers = 16

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeConsole device.CharDevice

	// activeDrivers tracks all initialized device drivers.
	activeDrivers [maxActiveDrivers]device.Driver
	numDrivers    int
}

// prefixBuf assembles the per-driver log prefix in fixed storage. Writes past
// the capacity are silently truncated but still reported as complete so kfmt
// does not treat them as errors.
type prefixBuf struct {
	buf [64]byte
	n   int
}

func (b *prefixBuf) Write(p []byte) (int, error) {
	b.n += copy(b.buf[b.n:], p)
	return len(p), nil
}

func (b *prefixBuf) Reset() {
	b.n = 0
}

func (b *prefixBuf) Bytes() []byte {
	return b.buf[:b.n]
}

var (
	devices managedDevices
	strBuf  prefixBuf
)

// ActiveConsole returns the console device, or nil before one is found.
func ActiveConsole() device.CharDevice {
	return devices.activeConsole
}

// DetectHardware probes for hardware devices and initializes the appropriate
// drivers. tree may be nil when the firmware provided no device tree; probes
// that can fall back to fixed platform addresses still run.
func DetectHardware(tree *fdt.Tree) {
	drivers := device.DriverList()
	sort.Sort(drivers)

	probe(tree, drivers)
}

// probe executes the probe function for each driver and invokes onDriverInit
// for each successfully initialized driver.
func probe(tree *fdt.Tree, driverInfoList device.DriverInfoList) {
	var w = kfmt.PrefixWriter{Sink: kfmt.Output()}

	for _, info := range driverInfoList {
		drv := info.Probe(tree)
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = strBuf.Bytes()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		onDriverInit(drv)
		if devices.numDrivers < maxActiveDrivers {
			devices.activeDrivers[devices.numDrivers] = drv
			devices.numDrivers++
		}
	}
}

// onDriverInit is invoked by probe whenever a piece of hardware is detected
// and successfully initialized. The first character device becomes the
// console and receives everything buffered since boot.
func onDriverInit(drv device.Driver) {
	cons, ok := drv.(device.CharDevice)
	if !ok || devices.activeConsole != nil {
		return
	}

	devices.activeConsole = cons
	kfmt.SetOutputSink(cons)
}
