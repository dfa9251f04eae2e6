// Package cpu implements the MOS 6502 core used by the NES, restricted
// to its 151 documented opcodes.
package cpu

import "fmt"

// AddressingMode identifies how an instruction's operand address is
// computed.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	flagC uint8 = 1 << 0
	flagZ uint8 = 1 << 1
	flagI uint8 = 1 << 2
	flagD uint8 = 1 << 3
	flagB uint8 = 1 << 4
	flagU uint8 = 1 << 5
	flagV uint8 = 1 << 6
	flagN uint8 = 1 << 7

	resetVector = 0xFFFC
	irqVector   = 0xFFFE
	nmiVector   = 0xFFFA
)

// MemoryInterface is the bus contract the CPU executes against.
type MemoryInterface interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// instruction describes one opcode's addressing mode, base cycle cost
// and mnemonic, and whether a page-crossing read address costs an extra
// cycle.
type instruction struct {
	name      string
	mode      AddressingMode
	cycles    uint8
	pageCross bool
	exec      func(c *CPU, addr uint16, pageCrossed bool) uint8
}

// CPU is a MOS 6502 register file plus an opcode dispatch table bound to
// a MemoryInterface.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16

	C, Z, I, D, V, N bool

	memory MemoryInterface
	cycles uint64

	nmiLine, nmiPrev bool
	irqLine          bool
}

// New creates a CPU wired to the given memory interface. Call Reset
// before stepping to establish the power-up register state.
func New(memory MemoryInterface) *CPU {
	return &CPU{memory: memory, SP: 0xFD}
}

// Reset performs the 6502 reset sequence: seven bus cycles culminating
// in PC loaded from the reset vector, interrupts disabled.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.C, c.Z, c.D, c.V, c.N = false, false, false, false, false
	c.I = true
	c.cycles = 0

	for i := 0; i < 5; i++ {
		c.memory.Read(c.PC)
		c.cycles++
	}
	lo := uint16(c.memory.Read(resetVector))
	hi := uint16(c.memory.Read(resetVector + 1))
	c.PC = hi<<8 | lo
	c.cycles += 2
}

// SetNMI latches the NMI line; a high-to-low transition schedules an
// NMI sequence to run before the next instruction fetch.
func (c *CPU) SetNMI(high bool) {
	if c.nmiPrev && !high {
		c.nmiLine = true
	}
	c.nmiPrev = high
}

// SetIRQ sets the level-triggered IRQ line.
func (c *CPU) SetIRQ(asserted bool) { c.irqLine = asserted }

// Cycles reports the CPU's running cycle counter since the last Reset
// (the reset sequence itself counts as 7 cycles).
func (c *CPU) Cycles() uint64 { return c.cycles }

// Stall accounts for cycles the CPU spends frozen off the bus, such as an
// OAM DMA burst, without running any instruction.
func (c *CPU) Stall(cycles int) { c.cycles += uint64(cycles) }

// StatusByte packs the flags into the 6502 processor status register,
// with bit 5 always set.
func (c *CPU) StatusByte() uint8 {
	var s uint8 = flagU
	if c.N {
		s |= flagN
	}
	if c.V {
		s |= flagV
	}
	if c.D {
		s |= flagD
	}
	if c.I {
		s |= flagI
	}
	if c.Z {
		s |= flagZ
	}
	if c.C {
		s |= flagC
	}
	return s
}

// SetStatusByte unpacks a processor status byte into the flag fields.
// The Break and unused bits are not stored; PLP and RTI both discard
// them per hardware behavior.
func (c *CPU) SetStatusByte(s uint8) {
	c.N = s&flagN != 0
	c.V = s&flagV != 0
	c.D = s&flagD != 0
	c.I = s&flagI != 0
	c.Z = s&flagZ != 0
	c.C = s&flagC != 0
}

func (c *CPU) push(v uint8) {
	c.memory.Write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.memory.Read(stackBase + uint16(c.SP))
}

func (c *CPU) pushWord(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) popWord() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return hi<<8 | lo
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

// Step services a pending NMI (or, with interrupts enabled, an asserted
// IRQ) in place of an instruction and returns the sequence's 7-cycle
// cost. Otherwise it fetches and executes one instruction and returns
// that instruction's cycle cost. An unrecognized opcode returns an error
// without advancing PC past the opcode byte.
func (c *CPU) Step() (int, error) {
	if n := c.serviceInterrupts(); n > 0 {
		return n, nil
	}

	opcode := c.memory.Read(c.PC)
	ins := opcodeTable[opcode]
	if ins.exec == nil {
		return 0, fmt.Errorf("cpu: invalid opcode $%02X at $%04X", opcode, c.PC)
	}

	addr, pageCrossed := c.operandAddress(ins.mode)
	extra := ins.exec(c, addr, pageCrossed)
	if pageCrossed && ins.pageCross {
		extra++
	}

	total := int(ins.cycles) + int(extra)
	c.cycles += uint64(total)
	return total, nil
}

func (c *CPU) serviceInterrupts() int {
	switch {
	case c.nmiLine:
		c.nmiLine = false
		c.interrupt(nmiVector, false)
	case c.irqLine && !c.I:
		c.interrupt(irqVector, false)
	default:
		return 0
	}
	c.cycles += 7
	return 7
}

// interrupt pushes PC and status (with B cleared per hardware-triggered
// interrupts, matching BRK's software-triggered push which sets B) and
// vectors PC. brkPush distinguishes the two call sites.
func (c *CPU) interrupt(vector uint16, brkPush bool) {
	c.pushWord(c.PC)
	status := c.StatusByte()
	if brkPush {
		status |= flagB
	} else {
		status &^= flagB
	}
	c.push(status)
	c.I = true
	lo := uint16(c.memory.Read(vector))
	hi := uint16(c.memory.Read(vector + 1))
	c.PC = hi<<8 | lo
}

const pageMask = 0xFF00

func (c *CPU) operandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		c.PC++
		return 0, false

	case Immediate:
		addr := c.PC + 1
		c.PC += 2
		return addr, false

	case ZeroPage:
		addr := uint16(c.memory.Read(c.PC + 1))
		c.PC += 2
		return addr, false

	case ZeroPageX:
		base := c.memory.Read(c.PC + 1)
		c.PC += 2
		return uint16(base + c.X), false

	case ZeroPageY:
		base := c.memory.Read(c.PC + 1)
		c.PC += 2
		return uint16(base + c.Y), false

	case Relative:
		offset := int8(c.memory.Read(c.PC + 1))
		base := c.PC + 2
		target := uint16(int32(base) + int32(offset))
		c.PC = base
		return target, base&pageMask != target&pageMask

	case Absolute:
		lo := uint16(c.memory.Read(c.PC + 1))
		hi := uint16(c.memory.Read(c.PC + 2))
		c.PC += 3
		return hi<<8 | lo, false

	case AbsoluteX:
		lo := uint16(c.memory.Read(c.PC + 1))
		hi := uint16(c.memory.Read(c.PC + 2))
		base := hi<<8 | lo
		addr := base + uint16(c.X)
		c.PC += 3
		return addr, base&pageMask != addr&pageMask

	case AbsoluteY:
		lo := uint16(c.memory.Read(c.PC + 1))
		hi := uint16(c.memory.Read(c.PC + 2))
		base := hi<<8 | lo
		addr := base + uint16(c.Y)
		c.PC += 3
		return addr, base&pageMask != addr&pageMask

	case Indirect:
		lo := uint16(c.memory.Read(c.PC + 1))
		hi := uint16(c.memory.Read(c.PC + 2))
		ptr := hi<<8 | lo
		c.PC += 3
		// Hardware bug: if the pointer's low byte is $FF, the high byte
		// is fetched from the start of the same page, not the next one.
		if ptr&0x00FF == 0x00FF {
			lo2 := uint16(c.memory.Read(ptr))
			hi2 := uint16(c.memory.Read(ptr & pageMask))
			return hi2<<8 | lo2, false
		}
		lo2 := uint16(c.memory.Read(ptr))
		hi2 := uint16(c.memory.Read(ptr + 1))
		return hi2<<8 | lo2, false

	case IndexedIndirect:
		base := c.memory.Read(c.PC + 1)
		ptr := base + c.X
		lo := uint16(c.memory.Read(uint16(ptr)))
		hi := uint16(c.memory.Read(uint16(ptr + 1)))
		c.PC += 2
		return hi<<8 | lo, false

	case IndirectIndexed:
		ptr := c.memory.Read(c.PC + 1)
		lo := uint16(c.memory.Read(uint16(ptr)))
		hi := uint16(c.memory.Read(uint16(ptr + 1)))
		base := hi<<8 | lo
		addr := base + uint16(c.Y)
		c.PC += 2
		return addr, base&pageMask != addr&pageMask

	default:
		return 0, false
	}
}
