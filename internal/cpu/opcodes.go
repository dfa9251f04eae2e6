package cpu

// Every opcode handler takes the already-resolved operand address and
// whether fetching it crossed a page boundary, and returns extra cycles
// beyond the table's base cost. Only branches consume pageCrossed
// directly; everything else ignores it and relies on the table's
// pageCross flag to apply the read penalty.

func (c *CPU) lda(addr uint16, _ bool) uint8 { c.A = c.memory.Read(addr); c.setZN(c.A); return 0 }
func (c *CPU) ldx(addr uint16, _ bool) uint8 { c.X = c.memory.Read(addr); c.setZN(c.X); return 0 }
func (c *CPU) ldy(addr uint16, _ bool) uint8 { c.Y = c.memory.Read(addr); c.setZN(c.Y); return 0 }

func (c *CPU) sta(addr uint16, _ bool) uint8 { c.memory.Write(addr, c.A); return 0 }
func (c *CPU) stx(addr uint16, _ bool) uint8 { c.memory.Write(addr, c.X); return 0 }
func (c *CPU) sty(addr uint16, _ bool) uint8 { c.memory.Write(addr, c.Y); return 0 }

func (c *CPU) adc(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr)
	var carry uint16
	if c.C {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	c.V = (c.A^uint8(sum))&(v^uint8(sum))&0x80 != 0
	c.C = sum > 0xFF
	c.A = uint8(sum)
	c.setZN(c.A)
	return 0
}

func (c *CPU) sbc(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr) ^ 0xFF
	var carry uint16
	if c.C {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	c.V = (c.A^uint8(sum))&(v^uint8(sum))&0x80 != 0
	c.C = sum > 0xFF
	c.A = uint8(sum)
	c.setZN(c.A)
	return 0
}

func (c *CPU) and(addr uint16, _ bool) uint8 { c.A &= c.memory.Read(addr); c.setZN(c.A); return 0 }
func (c *CPU) ora(addr uint16, _ bool) uint8 { c.A |= c.memory.Read(addr); c.setZN(c.A); return 0 }
func (c *CPU) eor(addr uint16, _ bool) uint8 { c.A ^= c.memory.Read(addr); c.setZN(c.A); return 0 }

func (c *CPU) aslMem(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr)
	c.C = v&0x80 != 0
	v <<= 1
	c.memory.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) aslA(uint16, bool) uint8 {
	c.C = c.A&0x80 != 0
	c.A <<= 1
	c.setZN(c.A)
	return 0
}

func (c *CPU) lsrMem(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr)
	c.C = v&0x01 != 0
	v >>= 1
	c.memory.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) lsrA(uint16, bool) uint8 {
	c.C = c.A&0x01 != 0
	c.A >>= 1
	c.setZN(c.A)
	return 0
}

func (c *CPU) rolMem(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr)
	old := c.C
	c.C = v&0x80 != 0
	v <<= 1
	if old {
		v |= 0x01
	}
	c.memory.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) rolA(uint16, bool) uint8 {
	old := c.C
	c.C = c.A&0x80 != 0
	c.A <<= 1
	if old {
		c.A |= 0x01
	}
	c.setZN(c.A)
	return 0
}

func (c *CPU) rorMem(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr)
	old := c.C
	c.C = v&0x01 != 0
	v >>= 1
	if old {
		v |= 0x80
	}
	c.memory.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) rorA(uint16, bool) uint8 {
	old := c.C
	c.C = c.A&0x01 != 0
	c.A >>= 1
	if old {
		c.A |= 0x80
	}
	c.setZN(c.A)
	return 0
}

func (c *CPU) cmp(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr)
	c.C = c.A >= v
	c.setZN(c.A - v)
	return 0
}

func (c *CPU) cpx(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr)
	c.C = c.X >= v
	c.setZN(c.X - v)
	return 0
}

func (c *CPU) cpy(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr)
	c.C = c.Y >= v
	c.setZN(c.Y - v)
	return 0
}

func (c *CPU) inc(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr) + 1
	c.memory.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) dec(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr) - 1
	c.memory.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) inx(uint16, bool) uint8 { c.X++; c.setZN(c.X); return 0 }
func (c *CPU) dex(uint16, bool) uint8 { c.X--; c.setZN(c.X); return 0 }
func (c *CPU) iny(uint16, bool) uint8 { c.Y++; c.setZN(c.Y); return 0 }
func (c *CPU) dey(uint16, bool) uint8 { c.Y--; c.setZN(c.Y); return 0 }

func (c *CPU) tax(uint16, bool) uint8 { c.X = c.A; c.setZN(c.X); return 0 }
func (c *CPU) txa(uint16, bool) uint8 { c.A = c.X; c.setZN(c.A); return 0 }
func (c *CPU) tay(uint16, bool) uint8 { c.Y = c.A; c.setZN(c.Y); return 0 }
func (c *CPU) tya(uint16, bool) uint8 { c.A = c.Y; c.setZN(c.A); return 0 }
func (c *CPU) tsx(uint16, bool) uint8 { c.X = c.SP; c.setZN(c.X); return 0 }
func (c *CPU) txs(uint16, bool) uint8 { c.SP = c.X; return 0 }

func (c *CPU) pha(uint16, bool) uint8 { c.push(c.A); return 0 }
func (c *CPU) pla(uint16, bool) uint8 { c.A = c.pop(); c.setZN(c.A); return 0 }

// php pushes status with Break and the unused bit both set, matching
// every software-initiated status push on real hardware.
func (c *CPU) php(uint16, bool) uint8 { c.push(c.StatusByte() | flagB | flagU); return 0 }

// plp restores flags from the stack; Break and the unused bit are not
// stored as CPU state (SetStatusByte ignores them).
func (c *CPU) plp(uint16, bool) uint8 { c.SetStatusByte(c.pop()); return 0 }

func (c *CPU) clc(uint16, bool) uint8 { c.C = false; return 0 }
func (c *CPU) sec(uint16, bool) uint8 { c.C = true; return 0 }
func (c *CPU) cli(uint16, bool) uint8 { c.I = false; return 0 }
func (c *CPU) sei(uint16, bool) uint8 { c.I = true; return 0 }
func (c *CPU) clv(uint16, bool) uint8 { c.V = false; return 0 }
func (c *CPU) cld(uint16, bool) uint8 { c.D = false; return 0 }
func (c *CPU) sed(uint16, bool) uint8 { c.D = true; return 0 }

func (c *CPU) jmp(addr uint16, _ bool) uint8 { c.PC = addr; return 0 }

func (c *CPU) jsr(addr uint16, _ bool) uint8 {
	c.pushWord(c.PC - 1)
	c.PC = addr
	return 0
}

func (c *CPU) rts(uint16, bool) uint8 { c.PC = c.popWord() + 1; return 0 }

func (c *CPU) rti(uint16, bool) uint8 {
	c.SetStatusByte(c.pop())
	c.PC = c.popWord()
	return 0
}

func (c *CPU) branch(addr uint16, pageCrossed bool, taken bool) uint8 {
	if !taken {
		return 0
	}
	c.PC = addr
	if pageCrossed {
		return 2
	}
	return 1
}

func (c *CPU) bcc(addr uint16, pageCrossed bool) uint8 { return c.branch(addr, pageCrossed, !c.C) }
func (c *CPU) bcs(addr uint16, pageCrossed bool) uint8 { return c.branch(addr, pageCrossed, c.C) }
func (c *CPU) bne(addr uint16, pageCrossed bool) uint8 { return c.branch(addr, pageCrossed, !c.Z) }
func (c *CPU) beq(addr uint16, pageCrossed bool) uint8 { return c.branch(addr, pageCrossed, c.Z) }
func (c *CPU) bpl(addr uint16, pageCrossed bool) uint8 { return c.branch(addr, pageCrossed, !c.N) }
func (c *CPU) bmi(addr uint16, pageCrossed bool) uint8 { return c.branch(addr, pageCrossed, c.N) }
func (c *CPU) bvc(addr uint16, pageCrossed bool) uint8 { return c.branch(addr, pageCrossed, !c.V) }
func (c *CPU) bvs(addr uint16, pageCrossed bool) uint8 { return c.branch(addr, pageCrossed, c.V) }

func (c *CPU) bit(addr uint16, _ bool) uint8 {
	v := c.memory.Read(addr)
	c.N = v&flagN != 0
	c.V = v&flagV != 0
	c.Z = c.A&v == 0
	return 0
}

func (c *CPU) nop(uint16, bool) uint8 { return 0 }

// brk is a one-byte instruction whose operandAddress (Implied mode) has
// already advanced PC past the opcode; BRK additionally skips the padding
// byte the 6502 always reads after it before pushing PC+2 and vectoring
// through IRQ with Break set.
func (c *CPU) brk(uint16, bool) uint8 {
	c.PC++
	c.interrupt(irqVector, true)
	return 0
}
