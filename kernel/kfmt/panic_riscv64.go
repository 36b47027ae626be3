package kfmt

import "github.com/mematrix/vos/kernel/cpu"

func init() {
	cpuHaltFn = cpu.Halt
}
