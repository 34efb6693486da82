package memory

import "github.com/pocketgb/pocketgb/gb/bit"

// JoypadKey identifies one of the eight buttons on the DMG joypad.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// dpadBit and buttonBit give each key's bit position within whichever of the
// two 4-bit lines (dpad or buttons) it belongs to. A key belongs to exactly
// one line; its entry in the other table is unused.
var dpadBit = [8]uint8{
	JoypadRight: 0,
	JoypadLeft:  1,
	JoypadUp:    2,
	JoypadDown:  3,
}

var buttonBit = [8]uint8{
	JoypadA:      0,
	JoypadB:      1,
	JoypadSelect: 2,
	JoypadStart:  3,
}

func isDpadKey(key JoypadKey) bool {
	return key == JoypadRight || key == JoypadLeft || key == JoypadUp || key == JoypadDown
}

// Joypad models the P1 (0xFF00) register: two active-low 4-bit lines
// (direction and action buttons) multiplexed onto one nibble by the guest
// selecting which line to read via bits 4/5.
type Joypad struct {
	buttons uint8 // low nibble, bit = 0 means pressed
	dpad    uint8
	line    uint8 // last value written to bits 4-5
}

// NewJoypad returns a Joypad with no keys held, matching the register's
// power-on state where every line reads all 1s.
func NewJoypad() *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
	}
}

// Read returns the nibble for whichever line is currently selected, or 0 if
// neither select bit is set (the DMG lets both be selected simultaneously;
// this emulation mirrors the teacher's simpler single-line behavior since
// no commercial ROM relies on the dual-select quirk).
func (j *Joypad) Read() uint8 {
	switch j.line {
	case 0x10:
		return j.dpad
	case 0x20:
		return j.buttons
	default:
		return 0
	}
}

// Write updates which line bit 4/5 selects; the low nibble is read-only from
// the guest's perspective and ignored here.
func (j *Joypad) Write(value uint8) {
	j.line = value & 0x30
}

// Press clears key's bit in its line, the DMG's active-low "pressed" state.
func (j *Joypad) Press(key JoypadKey) {
	if isDpadKey(key) {
		j.dpad = bit.Reset(dpadBit[key], j.dpad)
	} else {
		j.buttons = bit.Reset(buttonBit[key], j.buttons)
	}
}

// Release sets key's bit back to 1, the DMG's "not pressed" state.
func (j *Joypad) Release(key JoypadKey) {
	if isDpadKey(key) {
		j.dpad = bit.Set(dpadBit[key], j.dpad)
	} else {
		j.buttons = bit.Set(buttonBit[key], j.buttons)
	}
}
