// Package device defines the driver interfaces and the registry that the
// hardware abstraction layer probes at boot.
package device

import (
	"io"

	"github.com/mematrix/vos/kernel"
	"github.com/mematrix/vos/kernel/hal/fdt"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. If the driver init code
	// needs to log some output, it can use the supplied io.Writer in
	// conjunction with a call to kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}

// CharDevice is implemented by drivers for byte-stream devices that can act
// as the kernel console.
type CharDevice interface {
	Driver
	io.Writer
	io.ByteWriter
}

// ProbeFn is a function that scans the device tree for the presence of a
// particular piece of hardware and returns a driver for it.
type ProbeFn func(*fdt.Tree) Driver

// The driver detection order groups. Drivers within the same group are probed
// in registration order.
const (
	// DetectOrderEarly drivers are probed first; the console lives here so
	// later probes can log.
	DetectOrderEarly = -100

	// DetectOrderNormal is the default detection order.
	DetectOrderNormal = 0

	// DetectOrderLast drivers are probed after everything else.
	DetectOrderLast = 100
)

// DriverInfo describes a registered driver.
type DriverInfo struct {
	// Order specifies the detection order group for this driver.
	Order int

	// Probe checks for the presence of the device and returns a driver for
	// it, or nil if the hardware is absent.
	Probe ProbeFn
}

// DriverInfoList is a sortable list of registered drivers.
type DriverInfoList []*DriverInfo

// Len returns the number of entries in the list.
func (l DriverInfoList) Len() int { return len(l) }

// Swap exchanges two list entries.
func (l DriverInfoList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// Less reports whether entry i must be probed before entry j.
func (l DriverInfoList) Less(i, j int) bool { return l[i].Order < l[j].Order }

var registeredDrivers DriverInfoList

// RegisterDriver adds a driver to the registry. It is meant to be called from
// the init function of each driver package.
func RegisterDriver(info *DriverInfo) {
	registeredDrivers = append(registeredDrivers, info)
}

// DriverList returns the list of registered drivers.
func DriverList() DriverInfoList {
	return registeredDrivers
}
