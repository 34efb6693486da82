package cpu

import "github.com/pocketgb/pocketgb/gb/memory"

// Flag is one of the 4 possible flags used in the flag register (low byte of AF).
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// CPU is the main struct holding Z80-derived DMG state: the 8 general
// purpose registers (paired as AF/BC/DE/HL), SP, PC, and the interrupt
// master enable flip-flop with its one-instruction EI delay.
type CPU struct {
	bus *memory.MMU

	a, f       uint8
	b, c       uint8
	d, e       uint8
	h, l       uint8
	sp, pc     uint16

	currentOpcode uint16

	interruptsEnabled bool // IME
	eiPending         bool // EI takes effect after the instruction following it
	halted            bool
	haltBug           bool // HALT with IME=0 and a pending interrupt: PC fails to advance once
	stopped           bool

	cycles uint64
}

// New returns a CPU with registers initialized to the values real DMG
// hardware leaves them in immediately after the boot ROM hands off control,
// i.e. as if a cartridge had just been loaded and the boot sequence completed.
func New(bus *memory.MMU) *CPU {
	return &CPU{
		bus: bus,
		a:   0x01,
		f:   0xB0,
		b:   0x00,
		c:   0x13,
		d:   0x00,
		e:   0xD8,
		h:   0x01,
		l:   0x4D,
		sp:  0xFFFE,
		pc:  0x0100,
	}
}

// Reset reinitializes the CPU to power-on state with PC set to pc, used when
// a boot ROM is loaded and execution must start at 0x0000 instead of the
// post-boot state New otherwise assumes.
func (c *CPU) Reset(pc uint16) {
	c.a, c.f = 0, 0
	c.b, c.c = 0, 0
	c.d, c.e = 0, 0
	c.h, c.l = 0, 0
	c.sp = 0xFFFE
	c.pc = pc
	c.interruptsEnabled = false
	c.eiPending = false
	c.halted = false
	c.haltBug = false
	c.stopped = false
	c.cycles = 0
}

// PC returns the current program counter, used by the disassembler and orchestrator.
func (c *CPU) PC() uint16 { return c.pc }

// SP returns the current stack pointer.
func (c *CPU) SP() uint16 { return c.sp }

// IsHalted reports whether the CPU is in the HALT low-power wait state.
func (c *CPU) IsHalted() bool { return c.halted }

// IsStopped reports whether the CPU executed STOP.
func (c *CPU) IsStopped() bool { return c.stopped }

func (c *CPU) getAF() uint16 { return uint16(c.a)<<8 | uint16(c.f&0xF0) }
func (c *CPU) setAF(v uint16) {
	c.a = uint8(v >> 8)
	c.f = uint8(v) & 0xF0
}

func (c *CPU) getBC() uint16 { return uint16(c.b)<<8 | uint16(c.c) }
func (c *CPU) setBC(v uint16) {
	c.b = uint8(v >> 8)
	c.c = uint8(v)
}

func (c *CPU) getDE() uint16 { return uint16(c.d)<<8 | uint16(c.e) }
func (c *CPU) setDE(v uint16) {
	c.d = uint8(v >> 8)
	c.e = uint8(v)
}

func (c *CPU) getHL() uint16 { return uint16(c.h)<<8 | uint16(c.l) }
func (c *CPU) setHL(v uint16) {
	c.h = uint8(v >> 8)
	c.l = uint8(v)
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

// Decode peeks the opcode at PC without advancing it, assembling a 0xCBxx
// value for CB-prefixed instructions. currentOpcode is recorded for
// diagnostics and the disassembler.
func Decode(c *CPU) uint16 {
	opcode := uint16(c.bus.Read(c.pc))
	if opcode == 0xCB {
		next := c.bus.Read(c.pc + 1)
		opcode = 0xCB00 | uint16(next)
	}
	c.currentOpcode = opcode
	return opcode
}

// handleInterrupts checks the owning MMU's interrupt controller. It always
// reports whether any enabled interrupt is requested (used to wake the CPU
// from HALT regardless of IME), but only actually services one - pushing PC,
// jumping to the vector, clearing IF and IME - when IME is set.
func (c *CPU) handleInterrupts() bool {
	kind, ok := c.bus.Interrupts.Pending()
	if !ok {
		return false
	}

	if !c.interruptsEnabled {
		return true
	}

	c.interruptsEnabled = false
	c.bus.Interrupts.Clear(kind)
	c.pushStack(c.pc)
	c.pc = kind.Vector()
	c.cycles += 20

	return true
}

// Step services one pending interrupt when IME allows it (jumping to its
// vector), then executes a single instruction, or idles 4 T-cycles while
// halted. It returns the executed instruction's T-cycles; the 20 cycles of
// an interrupt dispatch are added to the CPU's own cycle count only.
func (c *CPU) Step() int {
	if c.stopped {
		return 4
	}

	pending := c.handleInterrupts()

	if c.halted {
		if !pending {
			return 4
		}
		c.halted = false
		if !c.interruptsEnabled {
			c.haltBug = true
		}
	}

	opcode := Decode(c)
	if opcode&0xFF00 == 0xCB00 {
		c.pc += 2
	} else {
		c.pc++
	}

	if c.haltBug {
		c.pc--
		c.haltBug = false
	}

	enableIME := c.eiPending
	cycles := decode(opcode)(c)

	if enableIME && c.eiPending {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	c.cycles += uint64(cycles)
	c.bus.Tick(cycles)

	return cycles
}
