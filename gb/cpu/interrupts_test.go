package cpu

import (
	"testing"

	"github.com/pocketgb/pocketgb/gb/interrupt"
	"github.com/pocketgb/pocketgb/gb/memory"
)

func newRunningCPU() (*CPU, *memory.MMU) {
	mmu := memory.New()
	c := New(mmu)
	return c, mmu
}

func TestHandleInterruptsIgnoresIMEWhenReportingPending(t *testing.T) {
	c, mmu := newRunningCPU()
	mmu.Interrupts.WriteIE(0x01)
	mmu.Interrupts.Request(interrupt.VBlank)
	pcBefore := c.pc

	got := c.handleInterrupts()

	if !got {
		t.Fatal("handleInterrupts() = false; want true, IME off should not hide a pending enabled interrupt")
	}
	if c.pc != pcBefore {
		t.Fatalf("pc = %#x; want unchanged at %#x since IME was off", c.pc, pcBefore)
	}
}

func TestHandleInterruptsServicesOneWhenIMESet(t *testing.T) {
	c, mmu := newRunningCPU()
	c.interruptsEnabled = true
	mmu.Interrupts.WriteIE(0x1F)
	mmu.Interrupts.Request(interrupt.VBlank)

	if !c.handleInterrupts() {
		t.Fatal("handleInterrupts() = false; want true")
	}
	if c.interruptsEnabled {
		t.Error("IME should be cleared by servicing an interrupt")
	}
	if c.pc != interrupt.VBlank.Vector() {
		t.Errorf("pc = %#x; want the VBlank vector %#x", c.pc, interrupt.VBlank.Vector())
	}
}

func TestHandleInterruptsPushesReturnAddress(t *testing.T) {
	c, mmu := newRunningCPU()
	c.interruptsEnabled = true
	c.pc = 0x1234
	c.sp = 0xFFFE
	mmu.Interrupts.WriteIE(0x1F)
	mmu.Interrupts.Request(interrupt.Timer)

	c.handleInterrupts()

	if c.sp != 0xFFFC {
		t.Fatalf("sp = %#x; want 0xFFFC after pushing a 16-bit return address", c.sp)
	}
	if got := c.popStack(); got != 0x1234 {
		t.Errorf("stacked return address = %#x; want 0x1234", got)
	}
}

func TestHandleInterruptsDispatchTakes20Cycles(t *testing.T) {
	c, mmu := newRunningCPU()
	c.interruptsEnabled = true
	mmu.Interrupts.WriteIE(0x01)
	mmu.Interrupts.Request(interrupt.VBlank)

	before := c.cycles
	c.handleInterrupts()

	if c.cycles-before != 20 {
		t.Fatalf("cycles spent = %d; want 20", c.cycles-before)
	}
}

func TestHandleInterruptsHonorsPriorityOrder(t *testing.T) {
	// All five requested at once: VBlank must be serviced first, then
	// re-requesting should walk down priority order exactly once each.
	order := []interrupt.Kind{interrupt.VBlank, interrupt.LCDSTAT, interrupt.Timer, interrupt.Serial, interrupt.Joypad}

	c, mmu := newRunningCPU()
	mmu.Interrupts.WriteIE(0x1F)
	for _, k := range order {
		mmu.Interrupts.Request(k)
	}

	for _, want := range order {
		c.interruptsEnabled = true
		c.handleInterrupts()
		if c.pc != want.Vector() {
			t.Fatalf("serviced vector %#x; want %s's vector %#x", c.pc, []string{"VBlank", "LCDSTAT", "Timer", "Serial", "Joypad"}[want], want.Vector())
		}
	}
}

func TestHandleInterruptsRespectsIEMask(t *testing.T) {
	c, mmu := newRunningCPU()
	c.interruptsEnabled = true
	mmu.Interrupts.WriteIE(0x00) // nothing enabled
	mmu.Interrupts.Request(interrupt.VBlank)

	if c.handleInterrupts() {
		t.Fatal("handleInterrupts() = true; a requested but disabled interrupt must not be reported pending")
	}
}

func TestDIClearsIMEImmediately(t *testing.T) {
	c, _ := newRunningCPU()
	c.interruptsEnabled = true

	opcode0xF3(c)

	if c.interruptsEnabled {
		t.Fatal("DI should clear IME with no delay")
	}
}

func TestEISetsPendingNotImmediateIME(t *testing.T) {
	c, _ := newRunningCPU()

	opcode0xFB(c)

	if c.interruptsEnabled {
		t.Fatal("EI must not enable IME on the same instruction; it only arms eiPending")
	}
	if !c.eiPending {
		t.Fatal("EI should set eiPending")
	}
}

func TestRETIEnablesIMEAndReturns(t *testing.T) {
	c, _ := newRunningCPU()
	c.interruptsEnabled = false
	c.sp = 0xFFFE
	c.pushStack(0x0150)

	opcode0xD9(c)

	if !c.interruptsEnabled {
		t.Fatal("RETI should enable IME")
	}
	if c.pc != 0x0150 {
		t.Fatalf("pc = %#x; want 0x0150", c.pc)
	}
}

func TestHALTWithIMESetWakesAndServices(t *testing.T) {
	c, mmu := newRunningCPU()
	c.interruptsEnabled = true

	opcode0x76(c)
	if !c.halted {
		t.Fatal("opcode0x76 (HALT) should set halted")
	}

	mmu.Interrupts.WriteIE(0x01)
	mmu.Interrupts.Request(interrupt.VBlank)

	pending := c.handleInterrupts()
	if c.halted && pending {
		c.halted = false
	}

	if c.halted {
		t.Fatal("a pending enabled interrupt should wake the CPU from HALT")
	}
	if c.pc != interrupt.VBlank.Vector() {
		t.Errorf("pc = %#x; want the VBlank vector", c.pc)
	}
}

func TestHALTWithIMEClearWakesWithoutServicing(t *testing.T) {
	c, mmu := newRunningCPU()
	c.interruptsEnabled = false
	c.pc = 0x0100

	opcode0x76(c)
	mmu.Interrupts.WriteIE(0x01)
	mmu.Interrupts.Request(interrupt.VBlank)

	pending := c.handleInterrupts()
	if c.halted && pending {
		c.halted = false
		if !c.interruptsEnabled {
			c.haltBug = true
		}
	}

	if c.halted {
		t.Fatal("HALT should wake even with IME clear")
	}
	if !c.haltBug {
		t.Fatal("waking from HALT with IME clear should arm the HALT bug")
	}
	if c.pc != 0x0100 {
		t.Fatalf("pc = %#x; want unchanged at 0x0100, no interrupt is actually serviced here", c.pc)
	}
}

func TestHALTWithNoPendingInterruptStaysHalted(t *testing.T) {
	c, mmu := newRunningCPU()
	c.interruptsEnabled = false

	opcode0x76(c)
	mmu.Interrupts.WriteIE(0x01) // enabled, but nothing requested

	if c.handleInterrupts() {
		t.Fatal("handleInterrupts() = true with nothing requested")
	}
	if !c.halted {
		t.Fatal("CPU should remain halted with no pending interrupt")
	}
}
