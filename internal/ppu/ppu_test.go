package ppu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCHR is a flat 8KB CHR space, standing in for a cartridge's CHR-RAM.
type fakeCHR struct {
	data [0x2000]uint8
}

func (c *fakeCHR) ReadCHR(addr uint16) uint8         { return c.data[addr&0x1FFF] }
func (c *fakeCHR) WriteCHR(addr uint16, value uint8) { c.data[addr&0x1FFF] = value }

func newTestPPU() (*PPU, *fakeCHR) {
	chr := &fakeCHR{}
	p := New()
	p.SetCHR(chr)
	return p, chr
}

func writeAddr(p *PPU, addr uint16) {
	p.WriteRegister(0x2006, uint8(addr>>8))
	p.WriteRegister(0x2006, uint8(addr))
}

func TestNametableMirrorsHorizontally(t *testing.T) {
	p, _ := newTestPPU()
	p.SetMirror(MirrorHorizontal)

	writeAddr(p, 0x2000)
	p.WriteRegister(0x2007, 0x55)
	writeAddr(p, 0x2400)
	p.ReadRegister(0x2007) // buffered read primes readBuf
	got := p.ReadRegister(0x2007)
	require.Equal(t, uint8(0x55), got, "$2000 and $2400 share a nametable under horizontal mirroring")
}

func TestNametableMirrorsVertically(t *testing.T) {
	p, _ := newTestPPU()
	p.SetMirror(MirrorVertical)

	writeAddr(p, 0x2000)
	p.WriteRegister(0x2007, 0x66)
	writeAddr(p, 0x2800)
	p.ReadRegister(0x2007)
	got := p.ReadRegister(0x2007)
	require.Equal(t, uint8(0x66), got, "$2000 and $2800 share a nametable under vertical mirroring")
}

func TestPaletteMirrorAliases(t *testing.T) {
	p, _ := newTestPPU()
	writeAddr(p, 0x3F00)
	p.WriteRegister(0x2007, 0x20)
	writeAddr(p, 0x3F10)
	got := p.ReadRegister(0x2007) // palette reads are not buffered
	require.Equal(t, uint8(0x20), got)
}

func TestStatusReadClearsVBlankAndWriteLatch(t *testing.T) {
	p, _ := newTestPPU()
	p.status |= statusVBlank
	p.writeLo = true

	v := p.ReadRegister(0x2002)
	require.True(t, v&statusVBlank != 0, "read must return the pre-clear value")
	require.Equal(t, uint8(0), p.status&statusVBlank)
	require.False(t, p.writeLo)
}

func TestOAMWriteAutoIncrements(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0xAB)
	p.WriteRegister(0x2004, 0xCD)
	require.Equal(t, uint8(0xAB), p.oam[0x10])
	require.Equal(t, uint8(0xCD), p.oam[0x11])
}

func TestFrameBufferLengthAndRange(t *testing.T) {
	p, _ := newTestPPU()
	fb := p.FrameBuffer()
	require.Len(t, fb, 256*240)
	for _, idx := range fb {
		require.LessOrEqual(t, idx, uint8(0x3F))
	}
}

func TestStepAdvancesDotsAndScanlines(t *testing.T) {
	p, _ := newTestPPU()
	for i := 0; i < 341; i++ {
		p.Step()
	}
	require.Equal(t, 0, p.dot)
	require.Equal(t, 1, p.scanline)
}

func TestVBlankSetAtScanline241Dot1(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2000, ctrlNMIEnable)
	// Step call n processes position n-1, so scanline=241, dot=1 (linear
	// position 241*341+1) is processed by the (241*341)+2'th Step call.
	for i := 0; i < 241*341+2; i++ {
		p.Step()
	}
	require.True(t, p.status&statusVBlank != 0)
	require.True(t, p.NMIPending())
}

func TestDoubleResetIsIdempotent(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2000, 0x80)
	p.Reset()
	first := *p
	p.Reset()
	require.Equal(t, first.ctrl, p.ctrl)
	require.Equal(t, first.v, p.v)
}
