// Package disasm turns bus bytes into mnemonic text for debugger
// inspection. Decode is a pure function: given a byte source and an
// address it returns a mnemonic and the instruction's length in bytes,
// with no dependency on any running CPU's program counter.
package disasm

import (
	"fmt"

	"github.com/pocketgb/pocketgb/gb/bit"
)

// Reader is the minimal bus capability the disassembler needs.
type Reader interface {
	Read(address uint16) byte
}

var regName8 = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var regName16 = [4]string{"BC", "DE", "HL", "SP"}
var condName = [4]string{"NZ", "Z", "NC", "C"}

// Decode returns the mnemonic and byte length of the instruction at addr.
// It never advances or reads any state beyond the bytes of this one
// instruction.
func Decode(mem Reader, addr uint16) (string, int) {
	op := mem.Read(addr)

	if op == 0xCB {
		return decodeCB(mem.Read(addr + 1)), 2
	}

	if mnemonic, length, ok := decodeFixed(mem, addr, op); ok {
		return mnemonic, length
	}

	// 0x40-0x7F: LD r,r' grid, with HALT at the (HL),(HL) slot.
	if op >= 0x40 && op <= 0x7F {
		if op == 0x76 {
			return "HALT", 1
		}
		dst := regName8[(op>>3)&0x7]
		src := regName8[op&0x7]
		return fmt.Sprintf("LD %s,%s", dst, src), 1
	}

	// 0x80-0xBF: ALU A,r grid (ADD/ADC/SUB/SBC/AND/XOR/OR/CP).
	if op >= 0x80 && op <= 0xBF {
		aluOps := [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}
		mnemonic := aluOps[(op>>3)&0x7]
		src := regName8[op&0x7]
		if mnemonic == "SUB" || mnemonic == "AND" || mnemonic == "XOR" || mnemonic == "OR" || mnemonic == "CP" {
			return fmt.Sprintf("%s %s", mnemonic, src), 1
		}
		return fmt.Sprintf("%s A,%s", mnemonic, src), 1
	}

	return fmt.Sprintf("DB 0x%02X", op), 1
}

// decodeFixed handles the irregular blocks (0x00-0x3F and 0xC0-0xFF) that
// don't follow the systematic register grid, plus operand formatting for
// instructions that take an immediate.
func decodeFixed(mem Reader, addr uint16, op byte) (string, int, bool) {
	n := func() byte { return mem.Read(addr + 1) }
	nn := func() uint16 { return bit.Combine(mem.Read(addr+2), mem.Read(addr+1)) }
	signed := func() int8 { return int8(n()) }

	switch op {
	case 0x00:
		return "NOP", 1, true
	case 0x01, 0x11, 0x21, 0x31:
		return fmt.Sprintf("LD %s,0x%04X", regName16[op>>4], nn()), 3, true
	case 0x02:
		return "LD (BC),A", 1, true
	case 0x12:
		return "LD (DE),A", 1, true
	case 0x22:
		return "LD (HL+),A", 1, true
	case 0x32:
		return "LD (HL-),A", 1, true
	case 0x03, 0x13, 0x23, 0x33:
		return fmt.Sprintf("INC %s", regName16[op>>4]), 1, true
	case 0x0B, 0x1B, 0x2B, 0x3B:
		return fmt.Sprintf("DEC %s", regName16[op>>4]), 1, true
	case 0x09, 0x19, 0x29, 0x39:
		return fmt.Sprintf("ADD HL,%s", regName16[op>>4]), 1, true
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C:
		return fmt.Sprintf("INC %s", regName8[(op>>3)&0x7]), 1, true
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D:
		return fmt.Sprintf("DEC %s", regName8[(op>>3)&0x7]), 1, true
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E:
		return fmt.Sprintf("LD %s,0x%02X", regName8[(op>>3)&0x7], n()), 2, true
	case 0x07:
		return "RLCA", 1, true
	case 0x0F:
		return "RRCA", 1, true
	case 0x17:
		return "RLA", 1, true
	case 0x1F:
		return "RRA", 1, true
	case 0x08:
		return fmt.Sprintf("LD (0x%04X),SP", nn()), 3, true
	case 0x0A:
		return "LD A,(BC)", 1, true
	case 0x1A:
		return "LD A,(DE)", 1, true
	case 0x2A:
		return "LD A,(HL+)", 1, true
	case 0x3A:
		return "LD A,(HL-)", 1, true
	case 0x10:
		return "STOP", 2, true
	case 0x18:
		return fmt.Sprintf("JR 0x%02X", byte(signed())), 2, true
	case 0x20, 0x28, 0x30, 0x38:
		return fmt.Sprintf("JR %s,0x%02X", condName[(op>>3)&0x3], byte(signed())), 2, true
	case 0x27:
		return "DAA", 1, true
	case 0x2F:
		return "CPL", 1, true
	case 0x37:
		return "SCF", 1, true
	case 0x3F:
		return "CCF", 1, true
	case 0xC0, 0xC8, 0xD0, 0xD8:
		return fmt.Sprintf("RET %s", condName[(op>>3)&0x3]), 1, true
	case 0xC9:
		return "RET", 1, true
	case 0xD9:
		return "RETI", 1, true
	case 0xC1, 0xD1, 0xE1:
		return fmt.Sprintf("POP %s", regName16[(op>>4)&0x3]), 1, true
	case 0xF1:
		return "POP AF", 1, true
	case 0xC5, 0xD5, 0xE5:
		return fmt.Sprintf("PUSH %s", regName16[(op>>4)&0x3]), 1, true
	case 0xF5:
		return "PUSH AF", 1, true
	case 0xC2, 0xCA, 0xD2, 0xDA:
		return fmt.Sprintf("JP %s,0x%04X", condName[(op>>3)&0x3], nn()), 3, true
	case 0xC3:
		return fmt.Sprintf("JP 0x%04X", nn()), 3, true
	case 0xE9:
		return "JP (HL)", 1, true
	case 0xC4, 0xCC, 0xD4, 0xDC:
		return fmt.Sprintf("CALL %s,0x%04X", condName[(op>>3)&0x3], nn()), 3, true
	case 0xCD:
		return fmt.Sprintf("CALL 0x%04X", nn()), 3, true
	case 0xC6:
		return fmt.Sprintf("ADD A,0x%02X", n()), 2, true
	case 0xCE:
		return fmt.Sprintf("ADC A,0x%02X", n()), 2, true
	case 0xD6:
		return fmt.Sprintf("SUB 0x%02X", n()), 2, true
	case 0xDE:
		return fmt.Sprintf("SBC A,0x%02X", n()), 2, true
	case 0xE6:
		return fmt.Sprintf("AND 0x%02X", n()), 2, true
	case 0xEE:
		return fmt.Sprintf("XOR 0x%02X", n()), 2, true
	case 0xF6:
		return fmt.Sprintf("OR 0x%02X", n()), 2, true
	case 0xFE:
		return fmt.Sprintf("CP 0x%02X", n()), 2, true
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		return fmt.Sprintf("RST 0x%02X", op&0x38), 1, true
	case 0xE0:
		return fmt.Sprintf("LDH (0xFF00+0x%02X),A", n()), 2, true
	case 0xF0:
		return fmt.Sprintf("LDH A,(0xFF00+0x%02X)", n()), 2, true
	case 0xE2:
		return "LD (0xFF00+C),A", 1, true
	case 0xF2:
		return "LD A,(0xFF00+C)", 1, true
	case 0xE8:
		return fmt.Sprintf("ADD SP,0x%02X", byte(signed())), 2, true
	case 0xF8:
		return fmt.Sprintf("LD HL,SP+0x%02X", byte(signed())), 2, true
	case 0xF9:
		return "LD SP,HL", 1, true
	case 0xEA:
		return fmt.Sprintf("LD (0x%04X),A", nn()), 3, true
	case 0xFA:
		return fmt.Sprintf("LD A,(0x%04X)", nn()), 3, true
	case 0xF3:
		return "DI", 1, true
	case 0xFB:
		return "EI", 1, true
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		return fmt.Sprintf("DB 0x%02X", op), 1, true
	}

	return "", 0, false
}

// decodeCB decodes the fully regular CB-prefixed table: rotate/shift group
// (0x00-0x3F), then BIT/RES/SET, each spanning 8 registers per bit index.
func decodeCB(op byte) string {
	reg := regName8[op&0x7]

	if op < 0x40 {
		ops := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
		return fmt.Sprintf("%s %s", ops[op>>3], reg)
	}

	bitIdx := (op >> 3) & 0x7
	switch {
	case op < 0x80:
		return fmt.Sprintf("BIT %d,%s", bitIdx, reg)
	case op < 0xC0:
		return fmt.Sprintf("RES %d,%s", bitIdx, reg)
	default:
		return fmt.Sprintf("SET %d,%s", bitIdx, reg)
	}
}
