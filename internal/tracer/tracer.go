// Package tracer formats CPU state into nestest-compatible trace lines
// suitable for byte-for-byte comparison against reference logs.
package tracer

import (
	"fmt"
	"strings"

	"gones/internal/cpu"
)

// unofficial lists every opcode byte implemented as an illegal/undocumented
// 6502 instruction; its mnemonic is rendered with a leading "*" per the
// nestest convention.
var unofficial = map[uint8]bool{
	0x1A: true, 0x3A: true, 0x5A: true, 0x7A: true, 0xDA: true, 0xFA: true,
	0x80: true, 0x82: true, 0x89: true, 0xC2: true, 0xE2: true,
	0x04: true, 0x44: true, 0x64: true,
	0x14: true, 0x34: true, 0x54: true, 0x74: true, 0xD4: true, 0xF4: true,
	0x0C: true, 0x1C: true, 0x3C: true, 0x5C: true, 0x7C: true, 0xDC: true, 0xFC: true,
	0xA7: true, 0xB7: true, 0xAF: true, 0xBF: true, 0xA3: true, 0xB3: true, // LAX
	0x87: true, 0x97: true, 0x8F: true, 0x83: true, // SAX
	0xEB: true, // SBC
	0xC7: true, 0xD7: true, 0xCF: true, 0xDF: true, 0xDB: true, 0xC3: true, 0xD3: true, // DCP
	0xE7: true, 0xF7: true, 0xEF: true, 0xFF: true, 0xFB: true, 0xE3: true, 0xF3: true, // ISB
	0x07: true, 0x17: true, 0x0F: true, 0x1F: true, 0x1B: true, 0x03: true, 0x13: true, // SLO
	0x27: true, 0x37: true, 0x2F: true, 0x3F: true, 0x3B: true, 0x23: true, 0x33: true, // RLA
	0x47: true, 0x57: true, 0x4F: true, 0x5F: true, 0x5B: true, 0x43: true, 0x53: true, // SRE
	0x67: true, 0x77: true, 0x6F: true, 0x7F: true, 0x7B: true, 0x63: true, 0x73: true, // RRA
	0x0B: true, 0x2B: true, // ANC
	0x4B: true, // ALR
	0x6B: true, // ARR
	0xCB: true, // AXS
	0xAB: true, // LXA
	0x8B: true, // XAA
	0xBB: true, // LAS
	0x9B: true, // TAS
	0x93: true, 0x9F: true, // AHX
	0x9E: true, // SHX
	0x9C: true, // SHY
}

// Line produces one trace line for the instruction about to execute at the
// CPU's current program counter. It must be called before cpu.Step advances
// state; it reads opcode and operand bytes through the CPU's own memory
// interface but never writes to it and never mutates the CPU.
func Line(c *cpu.CPU) string {
	begin := c.PC
	opcode := c.PeekMemory(begin)
	inst := c.Instruction(opcode)
	if inst == nil {
		return fmt.Sprintf("%04X  %02X        .UNK", begin, opcode)
	}

	hexBytes := make([]byte, 0, 3)
	hexBytes = append(hexBytes, opcode)

	var operand string
	switch inst.Bytes {
	case 1:
		if opcode == 0x0A || opcode == 0x4A || opcode == 0x2A || opcode == 0x6A {
			operand = "A"
		}
	case 2:
		b1 := c.PeekMemory(begin + 1)
		hexBytes = append(hexBytes, b1)
		operand = operand2(c, begin, inst.Mode, b1)
	case 3:
		lo := c.PeekMemory(begin + 1)
		hi := c.PeekMemory(begin + 2)
		hexBytes = append(hexBytes, lo, hi)
		address := uint16(hi)<<8 | uint16(lo)
		operand = operand3(c, opcode, inst.Mode, address)
	}

	hexParts := make([]string, len(hexBytes))
	for i, b := range hexBytes {
		hexParts[i] = fmt.Sprintf("%02X", b)
	}
	hexStr := strings.Join(hexParts, " ")

	mnemonic := inst.Name
	if unofficial[opcode] {
		mnemonic = "*" + mnemonic
	}

	asm := strings.TrimSpace(fmt.Sprintf("%04X  %-8s %4s %s", begin, hexStr, mnemonic, operand))

	return strings.ToUpper(fmt.Sprintf("%-47s A:%02X X:%02X Y:%02X P:%02X SP:%02X",
		asm, c.A, c.X, c.Y, c.GetStatusByte(), c.SP))
}

// operand2 renders the operand string for a two-byte instruction.
func operand2(c *cpu.CPU, begin uint16, mode cpu.AddressingMode, b1 uint8) string {
	switch mode {
	case cpu.Immediate:
		return fmt.Sprintf("#$%02X", b1)
	case cpu.ZeroPage:
		addr := uint16(b1)
		return fmt.Sprintf("$%02X = %02X", b1, c.PeekMemory(addr))
	case cpu.ZeroPageX:
		ea := uint16((b1 + c.X) & 0xFF)
		return fmt.Sprintf("$%02X,X @ %02X = %02X", b1, ea, c.PeekMemory(ea))
	case cpu.ZeroPageY:
		ea := uint16((b1 + c.Y) & 0xFF)
		return fmt.Sprintf("$%02X,Y @ %02X = %02X", b1, ea, c.PeekMemory(ea))
	case cpu.IndexedIndirect:
		ptr := (b1 + c.X) & 0xFF
		lo := uint16(c.PeekMemory(uint16(ptr)))
		hi := uint16(c.PeekMemory(uint16((ptr + 1) & 0xFF)))
		ea := hi<<8 | lo
		return fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", b1, ptr, ea, c.PeekMemory(ea))
	case cpu.IndirectIndexed:
		ptr := uint16(b1)
		lo := uint16(c.PeekMemory(ptr))
		hi := uint16(c.PeekMemory((ptr + 1) & 0xFF))
		base := hi<<8 | lo
		ea := base + uint16(c.Y)
		return fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", b1, base, ea, c.PeekMemory(ea))
	case cpu.Relative:
		target := uint16(int32(begin+2) + int32(int8(b1)))
		return fmt.Sprintf("$%04X", target)
	default:
		return ""
	}
}

// operand3 renders the operand string for a three-byte instruction.
func operand3(c *cpu.CPU, opcode uint8, mode cpu.AddressingMode, address uint16) string {
	switch mode {
	case cpu.Indirect:
		var target uint16
		if address&0x00FF == 0x00FF {
			lo := uint16(c.PeekMemory(address))
			hi := uint16(c.PeekMemory(address & 0xFF00))
			target = hi<<8 | lo
		} else {
			lo := uint16(c.PeekMemory(address))
			hi := uint16(c.PeekMemory(address + 1))
			target = hi<<8 | lo
		}
		return fmt.Sprintf("($%04X) = %04X", address, target)
	case cpu.Absolute:
		if opcode == 0x4C || opcode == 0x20 { // JMP/JSR absolute: no memory operand
			return fmt.Sprintf("$%04X", address)
		}
		return fmt.Sprintf("$%04X = %02X", address, c.PeekMemory(address))
	case cpu.AbsoluteX:
		ea := address + uint16(c.X)
		return fmt.Sprintf("$%04X,X @ %04X = %02X", address, ea, c.PeekMemory(ea))
	case cpu.AbsoluteY:
		ea := address + uint16(c.Y)
		return fmt.Sprintf("$%04X,Y @ %04X = %02X", address, ea, c.PeekMemory(ea))
	default:
		return fmt.Sprintf("$%04X", address)
	}
}
