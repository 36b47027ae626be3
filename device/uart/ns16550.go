// Package uart provides a driver for NS16550-compatible serial ports, the
// console device of the qemu virt machine.
package uart

import (
	"io"
	"unsafe"

	"github.com/mematrix/vos/device"
	"github.com/mematrix/vos/kernel"
	"github.com/mematrix/vos/kernel/hal/fdt"
	"github.com/mematrix/vos/kernel/mem"
)

// Register offsets from the port base. The receive and transmit registers
// share offset 0.
const (
	regData = 0 // RBR on read, THR on write
	regIER  = 1
	regFCR  = 2
	regLCR  = 3
	regLSR  = 5

	lcr8N1     = 0x03
	fcrEnable  = 0x01
	lsrDataRdy = 1 << 0
	lsrTHREmty = 1 << 5
)

var (
	errMissingBase = &kernel.Error{Module: "uart", Message: "no register base"}

	// The register accessors are variables so tests can substitute a fake
	// register file.
	mmioReadFn  = mmioRead
	mmioWriteFn = mmioWrite
)

func mmioRead(addr uintptr) byte {
	return *(*byte)(unsafe.Pointer(addr))
}

func mmioWrite(addr uintptr, v byte) {
	*(*byte)(unsafe.Pointer(addr)) = v
}

// NS16550 drives one NS16550-compatible port in polled mode.
type NS16550 struct {
	base uintptr
}

// DriverName returns the name of the driver.
func (d *NS16550) DriverName() string { return "ns16550" }

// DriverVersion returns the driver version.
func (d *NS16550) DriverVersion() (uint16, uint16, uint16) { return 0, 1, 0 }

// DriverInit configures the port: 8 data bits, no parity, one stop bit, FIFO
// enabled, interrupts off. The line speed is whatever the firmware set up.
func (d *NS16550) DriverInit(_ io.Writer) *kernel.Error {
	if d.base == 0 {
		return errMissingBase
	}

	mmioWriteFn(d.base+regLCR, lcr8N1)
	mmioWriteFn(d.base+regFCR, fcrEnable)
	mmioWriteFn(d.base+regIER, 0)
	return nil
}

// WriteByte blocks until the transmitter can take b and sends it.
func (d *NS16550) WriteByte(b byte) error {
	for mmioReadFn(d.base+regLSR)&lsrTHREmty == 0 {
	}
	mmioWriteFn(d.base+regData, b)
	return nil
}

// Write sends p one byte at a time. It never fails.
func (d *NS16550) Write(p []byte) (int, error) {
	for _, b := range p {
		d.WriteByte(b)
	}
	return len(p), nil
}

// ReadByte returns a pending input byte, if one is buffered.
func (d *NS16550) ReadByte() (byte, bool) {
	if mmioReadFn(d.base+regLSR)&lsrDataRdy == 0 {
		return 0, false
	}
	return mmioReadFn(d.base + regData), true
}

// probeForUART looks the port up in the device tree. Firmware that omits the
// tree still gets a console at the platform's fixed UART address.
func probeForUART(tree *fdt.Tree) device.Driver {
	if tree == nil {
		return &NS16550{base: mem.Uart0Base}
	}

	base, ok := tree.RegOfCompatible("ns16550a")
	if !ok {
		return nil
	}
	return &NS16550{base: base}
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probeForUART,
	})
}
