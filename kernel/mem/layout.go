package mem

// Uart0Base is the memory-mapped NS16550 compatible UART of the qemu
// riscv64 virt machine.
const Uart0Base = uintptr(0x10000000)

// Region is a half-open [Start, End) address range.
type Region struct {
	Start uintptr
	End   uintptr
}

// Size returns the region length in bytes. A region with Start >= End is
// empty.
func (r Region) Size() uintptr {
	if r.Start >= r.End {
		return 0
	}
	return r.End - r.Start
}

// BootLayout names the kernel image regions established by the link
// descriptor. The addresses are fixed by the linker script, never computed.
type BootLayout struct {
	Text   Region
	Rodata Region
	Data   Region
	BSS    Region
	Heap   Region
	Stack  Region
}

// Layout holds the regions of the running kernel image. It is populated once
// from the linker-provided symbols before any other kernel code runs and is
// read-only afterwards.
var Layout BootLayout

// SetLayout records the kernel image regions.
func SetLayout(l BootLayout) {
	Layout = l
}
