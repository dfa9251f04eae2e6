package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// mockMemory implements MemoryInterface as a flat 64KB address space.
type mockMemory struct {
	data [0x10000]uint8
}

func (m *mockMemory) Read(addr uint16) uint8         { return m.data[addr] }
func (m *mockMemory) Write(addr uint16, value uint8) { m.data[addr] = value }

func (m *mockMemory) setBytes(addr uint16, values ...uint8) {
	for i, v := range values {
		m.data[addr+uint16(i)] = v
	}
}

func newTestCPU() (*CPU, *mockMemory) {
	mem := &mockMemory{}
	mem.setBytes(resetVector, 0x00, 0x80) // reset vector -> $8000
	c := New(mem)
	c.Reset()
	return c, mem
}

func TestResetVectorsPC(t *testing.T) {
	c, _ := newTestCPU()
	require.Equal(t, uint16(0x8000), c.PC)
	require.Equal(t, uint8(0xFD), c.SP)
	require.True(t, c.I)
}

func TestLDAImmediateSetsFlags(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xA9, 0x00) // LDA #$00
	cycles, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, 2, cycles)
	require.Equal(t, uint8(0x00), c.A)
	require.True(t, c.Z)
	require.False(t, c.N)
}

func TestLDAImmediateNegative(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0xA9, 0x80)
	_, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, uint8(0x80), c.A)
	require.True(t, c.N)
	require.False(t, c.Z)
}

func TestADCCarryAndOverflow(t *testing.T) {
	c, mem := newTestCPU()
	c.A = 0x50
	mem.setBytes(0x8000, 0x69, 0x50) // ADC #$50 -> 0xA0, signed overflow
	_, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, uint8(0xA0), c.A)
	require.True(t, c.V)
	require.False(t, c.C)
	require.True(t, c.N)
}

func TestADCUnsignedCarry(t *testing.T) {
	c, mem := newTestCPU()
	c.A = 0xFF
	mem.setBytes(0x8000, 0x69, 0x01) // ADC #$01 -> wraps to 0x00, carry set
	_, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, uint8(0x00), c.A)
	require.True(t, c.C)
	require.True(t, c.Z)
	require.False(t, c.V)
}

func TestJSRRTSRoundTrip(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	mem.setBytes(0x9000, 0x60)             // RTS
	_, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, uint16(0x9000), c.PC)
	require.Equal(t, uint8(0xFB), c.SP) // two bytes pushed

	_, err = c.Step()
	require.NoError(t, err)
	require.Equal(t, uint16(0x8003), c.PC)
	require.Equal(t, uint8(0xFD), c.SP)
}

func TestIndirectJMPPageWrapBug(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x6C, 0xFF, 0x02) // JMP ($02FF)
	mem.setBytes(0x02FF, 0x34)
	mem.setBytes(0x0200, 0x12) // high byte wrongly read from $0200, not $0300
	mem.setBytes(0x0300, 0x99)

	_, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), c.PC)
}

func TestAbsoluteXPageCrossExtraCycle(t *testing.T) {
	c, mem := newTestCPU()
	c.X = 0xFF
	mem.setBytes(0x8000, 0xBD, 0x01, 0x00) // LDA $0001,X -> $0100, crosses page
	cycles, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, 5, cycles)
}

func TestBranchTakenAcrossPageAddsTwoCycles(t *testing.T) {
	c, mem := newTestCPU()
	c.Z = true
	// BEQ forward far enough to cross from page $80 into $81.
	mem.setBytes(0x80FD, 0xF0, 0x7F)
	c.PC = 0x80FD
	cycles, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, 4, cycles)
}

func TestPHPSetsBreakAndUnused(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x08) // PHP
	_, err := c.Step()
	require.NoError(t, err)
	pushed := mem.data[stackBase+uint16(c.SP)+1]
	require.Equal(t, flagB|flagU, pushed&(flagB|flagU))
}

func TestPLPIgnoresBreakAndUnused(t *testing.T) {
	c, mem := newTestCPU()
	c.push(0xFF)
	mem.setBytes(0x8000, 0x28) // PLP
	_, err := c.Step()
	require.NoError(t, err)
	require.True(t, c.C)
	require.True(t, c.Z)
	require.Equal(t, flagU, c.StatusByte()&(flagB|flagU), "Break is not kept; the unused bit always reads 1")
}

func TestInvalidOpcodeReturnsError(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(0x8000, 0x02) // unassigned slot
	_, err := c.Step()
	require.Error(t, err)
}

func TestNMIVectorsOnEdge(t *testing.T) {
	c, mem := newTestCPU()
	mem.setBytes(nmiVector, 0x00, 0x90)
	mem.setBytes(0x8000, 0xEA) // NOP
	c.SetNMI(true)
	c.SetNMI(false) // falling edge schedules the NMI
	_, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, uint16(0x9000), c.PC)
}

func TestStackPointerWrapsWithinPage(t *testing.T) {
	c, _ := newTestCPU()
	c.SP = 0x00
	c.push(0x42)
	require.Equal(t, uint8(0xFF), c.SP)
}

func TestDoubleResetIsIdempotent(t *testing.T) {
	c, _ := newTestCPU()
	first := c.Cycles()
	c.Reset()
	require.Equal(t, first, c.Cycles(), "Cycles() must not accumulate across resets")
}
