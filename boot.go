package main

import (
	"github.com/mematrix/vos/kernel/kmain"

	// The boot package is entered from assembly, not through the Go call
	// graph; the import keeps it linked into the image.
	_ "github.com/mematrix/vos/kernel/boot"

	// Device drivers register themselves with the hardware abstraction
	// layer via their package init.
	_ "github.com/mematrix/vos/device/uart"
)

// main is the only Go symbol that is visible (exported) from the boot code.
// It works as a trampoline for calling the actual kernel entrypoint
// (kmain.Kmain) and is intentionally defined to prevent the Go compiler from
// optimizing away the kernel code as it is not aware of the presence of the
// boot assembly.
//
// The boot code runs the machine-mode bootstrap for each hart and descends to
// supervisor mode before entering the kernel. main is not expected to return;
// if it does, the boot code parks the hart.
func main() {
	kmain.Kmain()
}
