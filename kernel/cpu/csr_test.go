package cpu

import "testing"

func TestStatusFSField(t *testing.T) {
	specs := []struct {
		in     Status
		expFS  Status
		expSet Status
	}{
		{0, FSOff, FSDirty},
		{FSInitial | StatusSPP, FSInitial, FSDirty | StatusSPP},
		{FSClean | StatusSIE, FSClean, FSDirty | StatusSIE},
		{FSDirty | StatusSPIE, FSDirty, FSDirty | StatusSPIE},
	}

	for specIndex, spec := range specs {
		if got := spec.in.FS(); got != spec.expFS {
			t.Errorf("[spec %d] expected FS() to return %x; got %x", specIndex, spec.expFS, got)
		}

		if got := spec.in.WithFS(FSDirty); got != spec.expSet {
			t.Errorf("[spec %d] expected WithFS(FSDirty) to return %x; got %x", specIndex, spec.expSet, got)
		}
	}
}

func TestCauseDecoding(t *testing.T) {
	specs := []struct {
		cause   Cause
		expIrq  bool
		expCode uint64
	}{
		{IntCauseSTimer, true, 5},
		{IntCauseSSoft, true, 1},
		{IntCauseSExt, true, 9},
		{ExcEcallFromU, false, 8},
		{ExcEcallFromS, false, 9},
		{ExcStorePageFault, false, 15},
	}

	for specIndex, spec := range specs {
		if got := spec.cause.IsInterrupt(); got != spec.expIrq {
			t.Errorf("[spec %d] expected IsInterrupt to return %t; got %t", specIndex, spec.expIrq, got)
		}

		if got := spec.cause.Code(); got != spec.expCode {
			t.Errorf("[spec %d] expected Code to return %d; got %d", specIndex, spec.expCode, got)
		}
	}
}

func TestMakeSatp(t *testing.T) {
	specs := []struct {
		mode   uint64
		asid   uint16
		rootPA uintptr
		exp    uint64
	}{
		{SatpModeBare, 0, 0, 0},
		{SatpModeSv39, 0, 0x80200000, 0x8000000000080200},
		{SatpModeSv39, 1, 0x80200000, 0x8000100000080200},
	}

	for specIndex, spec := range specs {
		if got := MakeSatp(spec.mode, spec.asid, spec.rootPA); got != spec.exp {
			t.Errorf("[spec %d] expected satp value %x; got %x", specIndex, spec.exp, got)
		}
	}
}

func TestDelegationMaskRetainsSupervisorEcall(t *testing.T) {
	if DelegAllExceptions&(1<<uint64(ExcEcallFromS)) != 0 {
		t.Error("expected the ecall-from-S exception to be retained at machine level")
	}

	for _, exc := range []Cause{ExcEcallFromU, ExcInsnPageFault, ExcLoadPageFault, ExcStorePageFault, ExcIllegalInsn} {
		if DelegAllExceptions&(1<<uint64(exc)) == 0 {
			t.Errorf("expected exception %d to be delegated to supervisor mode", exc)
		}
	}
}

func TestEnvcfgSTCEOccupiesTopBit(t *testing.T) {
	if EnvcfgSTCE != 1<<63 {
		t.Errorf("expected EnvcfgSTCE to be bit 63; got %x", EnvcfgSTCE)
	}
}
