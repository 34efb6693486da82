package memory

import (
	"github.com/pocketgb/pocketgb/gb/addr"
	"github.com/pocketgb/pocketgb/gb/bit"
	"github.com/pocketgb/pocketgb/gb/interrupt"
)

// Timer encapsulates the Game Boy timer/DIV/TIMA/TMA/TAC behavior.
//
// Tick reports interrupts it wants raised by returning an interrupt.Set
// instead of reaching into the CPU or MMU directly; the caller (the MMU)
// applies it to the shared interrupt.Controller.
//
// TIMA reload on overflow is modeled as immediate: the same cycle that
// carries TIMA from 0xFF to 0x00 loads TMA and requests the Timer
// interrupt. Real silicon delays the reload by 4 cycles (one that reads
// 0x00 before TMA lands), but that sub-instruction detail falls under this
// project's cycle-accurate-bus-timing non-goal, and the immediate model is
// what the timer overflow scenario this emulator is tested against expects.
type Timer struct {
	systemCounter uint16 // Internal 16-bit counter, DIV is upper 8 bits
	lastTimerBit  bool   // Previous state of timer bit for edge detection

	// Timer registers
	div  byte
	tima byte
	tma  byte
	tac  byte
}

// SetSeed initializes the internal divider counter and writes DIV accordingly.
func (t *Timer) SetSeed(seed uint16) {
	t.systemCounter = seed
	t.lastTimerBit = false
	t.div = byte(t.systemCounter >> 8)
}

// tacBitPosition maps TAC's 2-bit clock select to the system counter bit
// whose falling edge increments TIMA: 00->9 (4096 Hz), 01->3 (262144 Hz),
// 10->5 (65536 Hz), 11->7 (16384 Hz).
var tacBitPosition = [4]uint8{9, 3, 5, 7}

// Tick advances the timer by the specified number of CPU cycles and returns
// the set of interrupts it wants requested this step.
func (t *Timer) Tick(cycles int) interrupt.Set {
	var pending interrupt.Set

	for range cycles {
		t.systemCounter++
		t.div = byte(t.systemCounter >> 8)

		if t.tac&0x04 == 0 {
			t.lastTimerBit = false
			continue
		}

		currentTimerBit := bit.IsSet16(tacBitPosition[t.tac&0x03], t.systemCounter)

		if t.lastTimerBit && !currentTimerBit {
			if t.tima == 0xFF {
				t.tima = t.tma
				pending = pending.With(interrupt.Timer)
			} else {
				t.tima++
			}
		}

		t.lastTimerBit = currentTimerBit
	}

	return pending
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// Writing to DIV resets the divider, upper byte becomes 0
		t.systemCounter = 0
		t.div = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value
	}
}
