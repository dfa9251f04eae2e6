package cpu

// opcodeTable is the 256-entry dispatch table for the 6502's legal
// opcodes. Unassigned slots are left zero-valued (exec == nil) and are
// rejected by Step as invalid.
var opcodeTable [256]instruction

func op(code uint8, name string, mode AddressingMode, cycles uint8, pageCross bool, exec func(*CPU, uint16, bool) uint8) {
	opcodeTable[code] = instruction{name: name, mode: mode, cycles: cycles, pageCross: pageCross, exec: exec}
}

func init() {
	// LDA
	op(0xA9, "LDA", Immediate, 2, false, (*CPU).lda)
	op(0xA5, "LDA", ZeroPage, 3, false, (*CPU).lda)
	op(0xB5, "LDA", ZeroPageX, 4, false, (*CPU).lda)
	op(0xAD, "LDA", Absolute, 4, false, (*CPU).lda)
	op(0xBD, "LDA", AbsoluteX, 4, true, (*CPU).lda)
	op(0xB9, "LDA", AbsoluteY, 4, true, (*CPU).lda)
	op(0xA1, "LDA", IndexedIndirect, 6, false, (*CPU).lda)
	op(0xB1, "LDA", IndirectIndexed, 5, true, (*CPU).lda)

	// LDX
	op(0xA2, "LDX", Immediate, 2, false, (*CPU).ldx)
	op(0xA6, "LDX", ZeroPage, 3, false, (*CPU).ldx)
	op(0xB6, "LDX", ZeroPageY, 4, false, (*CPU).ldx)
	op(0xAE, "LDX", Absolute, 4, false, (*CPU).ldx)
	op(0xBE, "LDX", AbsoluteY, 4, true, (*CPU).ldx)

	// LDY
	op(0xA0, "LDY", Immediate, 2, false, (*CPU).ldy)
	op(0xA4, "LDY", ZeroPage, 3, false, (*CPU).ldy)
	op(0xB4, "LDY", ZeroPageX, 4, false, (*CPU).ldy)
	op(0xAC, "LDY", Absolute, 4, false, (*CPU).ldy)
	op(0xBC, "LDY", AbsoluteX, 4, true, (*CPU).ldy)

	// STA
	op(0x85, "STA", ZeroPage, 3, false, (*CPU).sta)
	op(0x95, "STA", ZeroPageX, 4, false, (*CPU).sta)
	op(0x8D, "STA", Absolute, 4, false, (*CPU).sta)
	op(0x9D, "STA", AbsoluteX, 5, false, (*CPU).sta)
	op(0x99, "STA", AbsoluteY, 5, false, (*CPU).sta)
	op(0x81, "STA", IndexedIndirect, 6, false, (*CPU).sta)
	op(0x91, "STA", IndirectIndexed, 6, false, (*CPU).sta)

	// STX / STY
	op(0x86, "STX", ZeroPage, 3, false, (*CPU).stx)
	op(0x96, "STX", ZeroPageY, 4, false, (*CPU).stx)
	op(0x8E, "STX", Absolute, 4, false, (*CPU).stx)
	op(0x84, "STY", ZeroPage, 3, false, (*CPU).sty)
	op(0x94, "STY", ZeroPageX, 4, false, (*CPU).sty)
	op(0x8C, "STY", Absolute, 4, false, (*CPU).sty)

	// ADC
	op(0x69, "ADC", Immediate, 2, false, (*CPU).adc)
	op(0x65, "ADC", ZeroPage, 3, false, (*CPU).adc)
	op(0x75, "ADC", ZeroPageX, 4, false, (*CPU).adc)
	op(0x6D, "ADC", Absolute, 4, false, (*CPU).adc)
	op(0x7D, "ADC", AbsoluteX, 4, true, (*CPU).adc)
	op(0x79, "ADC", AbsoluteY, 4, true, (*CPU).adc)
	op(0x61, "ADC", IndexedIndirect, 6, false, (*CPU).adc)
	op(0x71, "ADC", IndirectIndexed, 5, true, (*CPU).adc)

	// SBC
	op(0xE9, "SBC", Immediate, 2, false, (*CPU).sbc)
	op(0xE5, "SBC", ZeroPage, 3, false, (*CPU).sbc)
	op(0xF5, "SBC", ZeroPageX, 4, false, (*CPU).sbc)
	op(0xED, "SBC", Absolute, 4, false, (*CPU).sbc)
	op(0xFD, "SBC", AbsoluteX, 4, true, (*CPU).sbc)
	op(0xF9, "SBC", AbsoluteY, 4, true, (*CPU).sbc)
	op(0xE1, "SBC", IndexedIndirect, 6, false, (*CPU).sbc)
	op(0xF1, "SBC", IndirectIndexed, 5, true, (*CPU).sbc)

	// AND
	op(0x29, "AND", Immediate, 2, false, (*CPU).and)
	op(0x25, "AND", ZeroPage, 3, false, (*CPU).and)
	op(0x35, "AND", ZeroPageX, 4, false, (*CPU).and)
	op(0x2D, "AND", Absolute, 4, false, (*CPU).and)
	op(0x3D, "AND", AbsoluteX, 4, true, (*CPU).and)
	op(0x39, "AND", AbsoluteY, 4, true, (*CPU).and)
	op(0x21, "AND", IndexedIndirect, 6, false, (*CPU).and)
	op(0x31, "AND", IndirectIndexed, 5, true, (*CPU).and)

	// ORA
	op(0x09, "ORA", Immediate, 2, false, (*CPU).ora)
	op(0x05, "ORA", ZeroPage, 3, false, (*CPU).ora)
	op(0x15, "ORA", ZeroPageX, 4, false, (*CPU).ora)
	op(0x0D, "ORA", Absolute, 4, false, (*CPU).ora)
	op(0x1D, "ORA", AbsoluteX, 4, true, (*CPU).ora)
	op(0x19, "ORA", AbsoluteY, 4, true, (*CPU).ora)
	op(0x01, "ORA", IndexedIndirect, 6, false, (*CPU).ora)
	op(0x11, "ORA", IndirectIndexed, 5, true, (*CPU).ora)

	// EOR
	op(0x49, "EOR", Immediate, 2, false, (*CPU).eor)
	op(0x45, "EOR", ZeroPage, 3, false, (*CPU).eor)
	op(0x55, "EOR", ZeroPageX, 4, false, (*CPU).eor)
	op(0x4D, "EOR", Absolute, 4, false, (*CPU).eor)
	op(0x5D, "EOR", AbsoluteX, 4, true, (*CPU).eor)
	op(0x59, "EOR", AbsoluteY, 4, true, (*CPU).eor)
	op(0x41, "EOR", IndexedIndirect, 6, false, (*CPU).eor)
	op(0x51, "EOR", IndirectIndexed, 5, true, (*CPU).eor)

	// Shifts and rotates
	op(0x0A, "ASL", Accumulator, 2, false, (*CPU).aslA)
	op(0x06, "ASL", ZeroPage, 5, false, (*CPU).aslMem)
	op(0x16, "ASL", ZeroPageX, 6, false, (*CPU).aslMem)
	op(0x0E, "ASL", Absolute, 6, false, (*CPU).aslMem)
	op(0x1E, "ASL", AbsoluteX, 7, false, (*CPU).aslMem)

	op(0x4A, "LSR", Accumulator, 2, false, (*CPU).lsrA)
	op(0x46, "LSR", ZeroPage, 5, false, (*CPU).lsrMem)
	op(0x56, "LSR", ZeroPageX, 6, false, (*CPU).lsrMem)
	op(0x4E, "LSR", Absolute, 6, false, (*CPU).lsrMem)
	op(0x5E, "LSR", AbsoluteX, 7, false, (*CPU).lsrMem)

	op(0x2A, "ROL", Accumulator, 2, false, (*CPU).rolA)
	op(0x26, "ROL", ZeroPage, 5, false, (*CPU).rolMem)
	op(0x36, "ROL", ZeroPageX, 6, false, (*CPU).rolMem)
	op(0x2E, "ROL", Absolute, 6, false, (*CPU).rolMem)
	op(0x3E, "ROL", AbsoluteX, 7, false, (*CPU).rolMem)

	op(0x6A, "ROR", Accumulator, 2, false, (*CPU).rorA)
	op(0x66, "ROR", ZeroPage, 5, false, (*CPU).rorMem)
	op(0x76, "ROR", ZeroPageX, 6, false, (*CPU).rorMem)
	op(0x6E, "ROR", Absolute, 6, false, (*CPU).rorMem)
	op(0x7E, "ROR", AbsoluteX, 7, false, (*CPU).rorMem)

	// Compare
	op(0xC9, "CMP", Immediate, 2, false, (*CPU).cmp)
	op(0xC5, "CMP", ZeroPage, 3, false, (*CPU).cmp)
	op(0xD5, "CMP", ZeroPageX, 4, false, (*CPU).cmp)
	op(0xCD, "CMP", Absolute, 4, false, (*CPU).cmp)
	op(0xDD, "CMP", AbsoluteX, 4, true, (*CPU).cmp)
	op(0xD9, "CMP", AbsoluteY, 4, true, (*CPU).cmp)
	op(0xC1, "CMP", IndexedIndirect, 6, false, (*CPU).cmp)
	op(0xD1, "CMP", IndirectIndexed, 5, true, (*CPU).cmp)

	op(0xE0, "CPX", Immediate, 2, false, (*CPU).cpx)
	op(0xE4, "CPX", ZeroPage, 3, false, (*CPU).cpx)
	op(0xEC, "CPX", Absolute, 4, false, (*CPU).cpx)

	op(0xC0, "CPY", Immediate, 2, false, (*CPU).cpy)
	op(0xC4, "CPY", ZeroPage, 3, false, (*CPU).cpy)
	op(0xCC, "CPY", Absolute, 4, false, (*CPU).cpy)

	// Increment / decrement
	op(0xE6, "INC", ZeroPage, 5, false, (*CPU).inc)
	op(0xF6, "INC", ZeroPageX, 6, false, (*CPU).inc)
	op(0xEE, "INC", Absolute, 6, false, (*CPU).inc)
	op(0xFE, "INC", AbsoluteX, 7, false, (*CPU).inc)

	op(0xC6, "DEC", ZeroPage, 5, false, (*CPU).dec)
	op(0xD6, "DEC", ZeroPageX, 6, false, (*CPU).dec)
	op(0xCE, "DEC", Absolute, 6, false, (*CPU).dec)
	op(0xDE, "DEC", AbsoluteX, 7, false, (*CPU).dec)

	op(0xE8, "INX", Implied, 2, false, (*CPU).inx)
	op(0xCA, "DEX", Implied, 2, false, (*CPU).dex)
	op(0xC8, "INY", Implied, 2, false, (*CPU).iny)
	op(0x88, "DEY", Implied, 2, false, (*CPU).dey)

	// Register transfers
	op(0xAA, "TAX", Implied, 2, false, (*CPU).tax)
	op(0x8A, "TXA", Implied, 2, false, (*CPU).txa)
	op(0xA8, "TAY", Implied, 2, false, (*CPU).tay)
	op(0x98, "TYA", Implied, 2, false, (*CPU).tya)
	op(0xBA, "TSX", Implied, 2, false, (*CPU).tsx)
	op(0x9A, "TXS", Implied, 2, false, (*CPU).txs)

	// Stack
	op(0x48, "PHA", Implied, 3, false, (*CPU).pha)
	op(0x68, "PLA", Implied, 4, false, (*CPU).pla)
	op(0x08, "PHP", Implied, 3, false, (*CPU).php)
	op(0x28, "PLP", Implied, 4, false, (*CPU).plp)

	// Flags
	op(0x18, "CLC", Implied, 2, false, (*CPU).clc)
	op(0x38, "SEC", Implied, 2, false, (*CPU).sec)
	op(0x58, "CLI", Implied, 2, false, (*CPU).cli)
	op(0x78, "SEI", Implied, 2, false, (*CPU).sei)
	op(0xB8, "CLV", Implied, 2, false, (*CPU).clv)
	op(0xD8, "CLD", Implied, 2, false, (*CPU).cld)
	op(0xF8, "SED", Implied, 2, false, (*CPU).sed)

	// Control flow
	op(0x4C, "JMP", Absolute, 3, false, (*CPU).jmp)
	op(0x6C, "JMP", Indirect, 5, false, (*CPU).jmp)
	op(0x20, "JSR", Absolute, 6, false, (*CPU).jsr)
	op(0x60, "RTS", Implied, 6, false, (*CPU).rts)
	op(0x40, "RTI", Implied, 6, false, (*CPU).rti)

	// Branches
	op(0x90, "BCC", Relative, 2, false, (*CPU).bcc)
	op(0xB0, "BCS", Relative, 2, false, (*CPU).bcs)
	op(0xD0, "BNE", Relative, 2, false, (*CPU).bne)
	op(0xF0, "BEQ", Relative, 2, false, (*CPU).beq)
	op(0x10, "BPL", Relative, 2, false, (*CPU).bpl)
	op(0x30, "BMI", Relative, 2, false, (*CPU).bmi)
	op(0x50, "BVC", Relative, 2, false, (*CPU).bvc)
	op(0x70, "BVS", Relative, 2, false, (*CPU).bvs)

	// Misc
	op(0x24, "BIT", ZeroPage, 3, false, (*CPU).bit)
	op(0x2C, "BIT", Absolute, 4, false, (*CPU).bit)
	op(0xEA, "NOP", Implied, 2, false, (*CPU).nop)
	op(0x00, "BRK", Implied, 7, false, (*CPU).brk)
}
