// Package bus implements the NES system bus: CPU-visible address
// decoding, RAM mirroring, PPU/APU register routing, controller I/O, OAM
// DMA, and the memory-observer fan-out.
package bus

import (
	"github.com/nesgo/core/internal/apu"
	"github.com/nesgo/core/internal/cartridge"
	"github.com/nesgo/core/internal/controller"
	"github.com/nesgo/core/internal/ppu"
)

// Context is the snapshot handed to observers alongside every access.
type Context struct {
	Frame     uint64
	Cycle     uint64
	PC        uint16
	LastInput uint8
}

// Observer receives a callback for every CPU-visible bus access. It must
// not re-enter the bus (no Read/Write/attach calls from inside a
// callback).
type Observer interface {
	OnRead(addr uint16, value uint8, ctx Context)
	OnWrite(addr uint16, old, new uint8, ctx Context)
	OnFrameEnd(frame uint64)
}

// Bus owns CPU RAM and routes every 16-bit address to the right
// component. It does not own the CPU: the CPU holds a Bus as its memory
// interface (see internal/cpu), avoiding an ownership cycle.
type Bus struct {
	RAM [0x0800]uint8

	PPU         *ppu.PPU
	APU         *apu.APU
	Cartridge   *cartridge.Cartridge
	Controller1 *controller.Controller
	Controller2 *controller.Controller

	observers []Observer

	cycle          uint64
	frame          uint64
	lastInput      uint8
	dmaStallCycles int
}

// New creates a bus with fresh PPU, APU and controllers. LoadCartridge
// must be called before the bus can serve cartridge-space accesses.
func New() *Bus {
	return &Bus{
		PPU:         ppu.New(),
		APU:         apu.New(),
		Controller1: controller.New(),
		Controller2: controller.New(),
	}
}

// LoadCartridge installs a cartridge, wiring its CHR space and mirroring
// mode into the PPU.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.Cartridge = cart
	b.PPU.SetCHR(cart)
	b.PPU.SetMirror(ppuMirror(cart.Mirror()))
}

func ppuMirror(m cartridge.Mirror) ppu.Mirror {
	switch m {
	case cartridge.MirrorVertical:
		return ppu.MirrorVertical
	case cartridge.MirrorFourScreen:
		return ppu.MirrorFourScreen
	default:
		return ppu.MirrorHorizontal
	}
}

// Reset resets the owned PPU and APU. RAM and controller state are left
// as they are (RAM persists across a reset on real hardware).
func (b *Bus) Reset() {
	b.PPU.Reset()
	b.APU.Reset()
}

// SetCycleContext lets the System report the current cycle/frame counters
// used to build the Context passed to observers.
func (b *Bus) SetCycleContext(cycle, frame uint64) {
	b.cycle, b.frame = cycle, frame
}

// AttachObserver registers an observer. Per the concurrency model,
// callers must only attach between System steps, never from inside one.
func (b *Bus) AttachObserver(o Observer) {
	b.observers = append(b.observers, o)
}

// ClearObservers removes all registered observers.
func (b *Bus) ClearObservers() {
	b.observers = nil
}

// NotifyFrameEnd fans a frame-boundary event out to observers.
func (b *Bus) NotifyFrameEnd(frame uint64) {
	for _, o := range b.observers {
		o.OnFrameEnd(frame)
	}
}

func (b *Bus) context(pc uint16) Context {
	return Context{Frame: b.frame, Cycle: b.cycle, PC: pc, LastInput: b.lastInput}
}

// Read performs a CPU-visible, side-effecting read (e.g. $2002 clears
// VBlank) and fans the access out to observers.
func (b *Bus) Read(addr uint16) uint8 {
	v := b.read(addr)
	ctx := b.context(addr)
	for _, o := range b.observers {
		o.OnRead(addr, v, ctx)
	}
	return v
}

// Peek is the non-side-effecting read entry point the spec requires for
// tests and observers that must not disturb PPU/controller state.
func (b *Bus) Peek(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.RAM[addr&0x07FF]
	case addr < 0x4000:
		if addr&7 == 2 {
			return b.PPU.Status()
		}
		return 0
	case addr < 0x4020:
		if addr == 0x4015 {
			return b.APU.ReadStatus()
		}
		return 0
	default:
		if b.Cartridge != nil {
			return b.Cartridge.ReadPRG(addr)
		}
		return 0xFF
	}
}

func (b *Bus) read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.RAM[addr&0x07FF]
	case addr < 0x4000:
		return b.PPU.ReadRegister(0x2000 + addr&7)
	case addr == 0x4015:
		return b.APU.ReadStatus()
	case addr == 0x4016:
		return b.Controller1.Read()
	case addr == 0x4017:
		return b.Controller2.Read() | 0x40
	case addr < 0x4020:
		return 0xFF // write-only APU register, approximated open bus
	default:
		if b.Cartridge == nil {
			return 0xFF
		}
		return b.Cartridge.ReadPRG(addr)
	}
}

// Write performs a CPU-visible write and fans the access out to
// observers.
func (b *Bus) Write(addr uint16, value uint8) {
	old := b.Peek(addr)
	b.write(addr, value)
	ctx := b.context(addr)
	for _, o := range b.observers {
		o.OnWrite(addr, old, value, ctx)
	}
}

func (b *Bus) write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.RAM[addr&0x07FF] = value
	case addr < 0x4000:
		b.PPU.WriteRegister(0x2000+addr&7, value)
	case addr == 0x4014:
		b.oamDMA(value)
	case addr == 0x4016:
		strobe := value&1 != 0
		b.Controller1.Strobe(strobe)
		b.Controller2.Strobe(strobe)
	case addr == 0x4017:
		b.APU.WriteRegister(addr, value)
	case addr < 0x4020:
		b.APU.WriteRegister(addr, value)
	default:
		if b.Cartridge != nil {
			b.Cartridge.WritePRG(addr, value)
		}
	}
}

// oamDMA performs the 256-byte burst copy from CPU page value<<8 into
// PPU OAM starting at the current OAMADDR, and arms the CPU stall-cycle
// count (513, or 514 if the cycle count last set by SetCycleContext, i.e.
// the CPU cycle at the start of the triggering instruction, is odd) for
// the System to collect via PendingDMAStallCycles.
func (b *Bus) oamDMA(page uint8) {
	base := uint16(page) << 8
	start := b.PPU.OAMAddr()
	for i := 0; i < 256; i++ {
		b.PPU.WriteOAM(start+uint8(i), b.read(base+uint16(i)))
	}

	b.dmaStallCycles = 513
	if b.cycle%2 != 0 {
		b.dmaStallCycles++
	}
}

// PendingDMAStallCycles reports and clears any CPU stall cycles armed by
// an OAM DMA write, so the System can add them to an instruction's cost.
func (b *Bus) PendingDMAStallCycles() int {
	n := b.dmaStallCycles
	b.dmaStallCycles = 0
	return n
}

// SetButton updates a controller's button mask. controllerID is 1 or 2.
func (b *Bus) SetButton(controllerID int, btn controller.Button, pressed bool) {
	switch controllerID {
	case 1:
		b.Controller1.SetButton(btn, pressed)
	case 2:
		b.Controller2.SetButton(btn, pressed)
	}
	if pressed {
		b.lastInput = uint8(btn)
	}
}
