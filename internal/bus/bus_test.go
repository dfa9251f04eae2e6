package bus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nesgo/core/internal/cartridge"
	"github.com/nesgo/core/internal/controller"
)

func testCartridge(t *testing.T) *cartridge.Cartridge {
	t.Helper()
	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	data := make([]byte, len(header)+16*1024+8*1024)
	copy(data, header)
	cart, err := cartridge.Load(data)
	require.NoError(t, err)
	return cart
}

func TestRAMMirroring(t *testing.T) {
	b := New()
	b.Write(0x0000, 0x42)
	require.Equal(t, uint8(0x42), b.Read(0x0800))
	require.Equal(t, uint8(0x42), b.Read(0x1000))
	require.Equal(t, uint8(0x42), b.Read(0x1800))
}

func TestPPURegisterMirroring(t *testing.T) {
	b := New()
	b.LoadCartridge(testCartridge(t))
	b.Write(0x2003, 0x20)
	b.Write(0x200C, 0x99) // mirrors $2004 (0x200C & 7 == 4)
	b.Write(0x2003, 0x20)
	require.Equal(t, uint8(0x99), b.Read(0x2004))
}

func TestControllerStrobeAndRead(t *testing.T) {
	b := New()
	b.LoadCartridge(testCartridge(t))
	b.Controller1.SetButton(controller.ButtonA, true)
	b.Write(0x4016, 1)
	b.Write(0x4016, 0)
	v := b.Read(0x4016)
	require.Equal(t, uint8(1), v&1)
}

func TestControllerOneReadIsNotOpenBusPadded(t *testing.T) {
	b := New()
	b.LoadCartridge(testCartridge(t))
	b.Write(0x4016, 1)
	b.Write(0x4016, 0)
	require.Equal(t, uint8(0), b.Read(0x4016), "$4016 must return the raw controller bit, unlike $4017")
}

func TestOAMDMACopies256Bytes(t *testing.T) {
	b := New()
	b.LoadCartridge(testCartridge(t))
	for i := 0; i < 256; i++ {
		b.RAM[i] = uint8(i)
	}
	b.Write(0x4014, 0x00) // DMA from page 0
	for i := 0; i < 256; i++ {
		b.PPU.WriteRegister(0x2003, uint8(i))
		require.Equal(t, uint8(i), b.PPU.ReadRegister(0x2004))
	}
}

func TestOAMDMAStartsAtCurrentOAMAddr(t *testing.T) {
	b := New()
	b.LoadCartridge(testCartridge(t))
	for i := 0; i < 256; i++ {
		b.RAM[i] = uint8(i)
	}
	b.Write(0x2003, 0x10) // OAMADDR = $10
	b.Write(0x4014, 0x00) // DMA from page 0

	for i := 0; i < 256; i++ {
		b.PPU.WriteRegister(0x2003, uint8(0x10+i))
		require.Equal(t, uint8(i), b.PPU.ReadRegister(0x2004), "byte %d must land at OAMADDR+%d, wrapping mod 256", i, i)
	}
}

func TestOAMDMAArmsCPUStallCycles(t *testing.T) {
	b := New()
	b.LoadCartridge(testCartridge(t))
	require.Equal(t, 0, b.PendingDMAStallCycles())

	b.SetCycleContext(2, 0) // even cycle -> 513
	b.Write(0x4014, 0x00)
	require.Equal(t, 513, b.PendingDMAStallCycles())
	require.Equal(t, 0, b.PendingDMAStallCycles(), "stall count must clear after being read")

	b.SetCycleContext(3, 0) // odd cycle -> 514
	b.Write(0x4014, 0x00)
	require.Equal(t, 514, b.PendingDMAStallCycles())
}

func TestPeekDoesNotMutatePPUState(t *testing.T) {
	b := New()
	b.LoadCartridge(testCartridge(t))
	before := b.Peek(0x2002)
	after := b.Peek(0x2002)
	require.Equal(t, before, after, "Peek must not clear VBlank or the write latch")
}

type recordingObserver struct {
	reads      int
	writes     int
	frameEnds  int
}

func (r *recordingObserver) OnRead(addr uint16, value uint8, ctx Context)         { r.reads++ }
func (r *recordingObserver) OnWrite(addr uint16, old, new uint8, ctx Context)     { r.writes++ }
func (r *recordingObserver) OnFrameEnd(frame uint64)                             { r.frameEnds++ }

func TestObserverFanOut(t *testing.T) {
	b := New()
	b.LoadCartridge(testCartridge(t))
	obs := &recordingObserver{}
	b.AttachObserver(obs)

	b.Read(0x0000)
	b.Write(0x0000, 0x01)
	b.NotifyFrameEnd(1)

	require.Equal(t, 1, obs.reads)
	require.Equal(t, 1, obs.writes)
	require.Equal(t, 1, obs.frameEnds)
}

func TestClearObserversStopsFanOut(t *testing.T) {
	b := New()
	b.LoadCartridge(testCartridge(t))
	obs := &recordingObserver{}
	b.AttachObserver(obs)
	b.ClearObservers()

	b.Read(0x0000)
	require.Equal(t, 0, obs.reads)
}
