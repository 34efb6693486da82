package cpu

// The CB-prefixed table is a fully regular grid: the low 3 bits select an
// 8-bit operand (the same operand8/setOperand8 register-or-(HL) slots the
// unprefixed LD/ALU grids use, see opcodes.go), the remaining 5 bits select
// the operation - rotate/shift (0x00-0x3F), then BIT/RES/SET, each spanning
// one bit index 0-7 per 8 opcodes. buildCBMap fills opcodeCBMap from this
// grid once at package init instead of listing 256 near-identical wrappers.

// cbRotateGrid holds the 8 rotate/shift operations selected by an opcode's
// top 5 bits (0x00-0x3F), in the DMG's fixed order.
var cbRotateGrid = [8]func(*CPU, *uint8){
	(*CPU).rlc,
	(*CPU).rrc,
	(*CPU).rl,
	(*CPU).rr,
	(*CPU).sla,
	(*CPU).sra,
	(*CPU).swap,
	(*CPU).srl,
}

func rotateOpcode(apply func(*CPU, *uint8), operand uint8) Opcode {
	cycles := 8
	if operand == 6 {
		cycles = 16
	}
	return func(cpu *CPU) int {
		value := cpu.operand8(operand)
		apply(cpu, &value)
		cpu.setOperand8(operand, value)
		return cycles
	}
}

func bitOpcode(bitIdx, operand uint8) Opcode {
	cycles := 8
	if operand == 6 {
		cycles = 12
	}
	return func(cpu *CPU) int {
		cpu.bit(bitIdx, cpu.operand8(operand))
		return cycles
	}
}

func resOpcode(bitIdx, operand uint8) Opcode {
	cycles := 8
	if operand == 6 {
		cycles = 16
	}
	return func(cpu *CPU) int {
		value := cpu.operand8(operand)
		cpu.res(bitIdx, &value)
		cpu.setOperand8(operand, value)
		return cycles
	}
}

func setOpcode(bitIdx, operand uint8) Opcode {
	cycles := 8
	if operand == 6 {
		cycles = 16
	}
	return func(cpu *CPU) int {
		value := cpu.operand8(operand)
		cpu.set(bitIdx, &value)
		cpu.setOperand8(operand, value)
		return cycles
	}
}

func buildCBMap() map[uint8]Opcode {
	m := make(map[uint8]Opcode, 256)

	for op := 0; op <= 0xFF; op++ {
		o := uint8(op)
		operand := o & 0x7
		bitIdx := (o >> 3) & 0x7

		switch {
		case o < 0x40:
			m[o] = rotateOpcode(cbRotateGrid[o>>3], operand)
		case o < 0x80:
			m[o] = bitOpcode(bitIdx, operand)
		case o < 0xC0:
			m[o] = resOpcode(bitIdx, operand)
		default:
			m[o] = setOpcode(bitIdx, operand)
		}
	}

	return m
}
