package kmain

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mematrix/vos/kernel/cpu"
	"github.com/mematrix/vos/kernel/hal/fdt"
	"github.com/mematrix/vos/kernel/kfmt"
	"github.com/mematrix/vos/kernel/trap"
)

func restoreKmainFns() {
	installFrameFn = nil
	armTimerFn = nil
	enableInterruptsFn = nil
	idleFn = nil
	tickInterval = 0
	idleFrame = trap.Frame{}
	deviceTree = fdt.Tree{}
	trap.HandleTrap(nil)
	kfmt.SetOutputSink(nil)
}

func TestHandleTrapTimerReArmsNextTick(t *testing.T) {
	defer restoreKmainFns()

	var armed uint64
	armTimerFn = func(delta uint64) { armed = delta }
	tickInterval = 12345

	pc := uintptr(0x80200abc)
	if got := handleTrap(pc, 0, cpu.IntCauseSTimer, 0, nil, nil); got != pc {
		t.Errorf("expected the timer handler to resume at %x; got %x", pc, got)
	}
	if armed != tickInterval {
		t.Errorf("expected the next tick to be armed at +%d; got +%d", tickInterval, armed)
	}
}

func TestHandleTrapUserEcallResumesPastInstruction(t *testing.T) {
	defer restoreKmainFns()

	pc := uintptr(0x1000)
	if got := handleTrap(pc, 0, cpu.ExcEcallFromU, 0, nil, nil); got != pc+cpu.EcallInsnSize {
		t.Errorf("expected resume at %x; got %x", pc+cpu.EcallInsnSize, got)
	}
}

func TestHandleTrapFatalCause(t *testing.T) {
	defer restoreKmainFns()

	var out bytes.Buffer
	kfmt.SetOutputSink(&out)

	// kfmt.Panic ends in the nil halt function on the test host; all that
	// matters is that the handler never returns normally.
	defer func() {
		if recover() == nil {
			t.Fatal("expected a fatal trap to panic")
		}
		if got := out.String(); !strings.Contains(got, "unrecoverable error") {
			t.Errorf("expected a panic banner; got %q", got)
		}
	}()

	var frame trap.Frame
	handleTrap(0x2000, 0xdead, cpu.ExcStorePageFault, 0, &frame, nil)
}

func TestKmainBootSequence(t *testing.T) {
	defer restoreKmainFns()

	var out bytes.Buffer
	kfmt.SetOutputSink(&out)

	var (
		sequence  []string
		installed *trap.Frame
		armed     uint64
	)
	installFrameFn = func(f *trap.Frame) {
		sequence = append(sequence, "install")
		installed = f
	}
	armTimerFn = func(delta uint64) {
		sequence = append(sequence, "arm")
		armed = delta
	}
	enableInterruptsFn = func() { sequence = append(sequence, "enable") }
	idleFn = func() { sequence = append(sequence, "idle") }

	SetBootArgs(0, 0, 0x3000)
	Kmain()

	exp := []string{"install", "arm", "enable", "idle"}
	if len(sequence) != len(exp) {
		t.Fatalf("expected sequence %v; got %v", exp, sequence)
	}
	for i, step := range exp {
		if sequence[i] != step {
			t.Fatalf("expected step %d to be %s; got %s", i, step, sequence[i])
		}
	}

	if installed != &idleFrame || installed.Hart == nil {
		t.Error("expected the idle frame to be installed with its hart frame bound")
	}
	// Default timebase of 10MHz at 100 ticks per second.
	if armed != 100000 {
		t.Errorf("expected the first tick to be armed at +100000; got +%d", armed)
	}
	if installed.Hart.GP != 0x3000 {
		t.Errorf("expected the hart frame to carry gp %x; got %x", 0x3000, installed.Hart.GP)
	}
}
