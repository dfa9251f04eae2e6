// Package nes exposes a complete NES core: load an iNES ROM, step it
// cycle-by-cycle or frame-by-frame, read back its framebuffer and audio
// samples, and feed it controller input.
package nes

import (
	"errors"

	"github.com/nesgo/core/internal/bus"
	"github.com/nesgo/core/internal/cartridge"
	"github.com/nesgo/core/internal/controller"
	"github.com/nesgo/core/internal/cpu"
)

// cyclesPerFrame is the CPU-cycle budget of one NTSC frame: 262
// scanlines * 341 PPU dots, at one CPU cycle per three PPU dots.
const cyclesPerFrame = 262 * 341 / 3

// System is a complete, self-contained NES: CPU, PPU, APU, cartridge and
// two controllers wired through a shared bus.
type System struct {
	cpu *cpu.CPU
	bus *bus.Bus

	frame uint64
}

// Load parses an iNES ROM image and returns a System ready for Reset.
func Load(data []byte) (*System, error) {
	cart, err := cartridge.Load(data)
	if err != nil {
		if errors.Is(err, cartridge.ErrUnsupportedMapper) {
			return nil, newError(ErrUnsupportedMapper, err)
		}
		return nil, newError(ErrROMLoad, err)
	}

	b := bus.New()
	b.LoadCartridge(cart)
	c := cpu.New(b)

	return &System{cpu: c, bus: b}, nil
}

// Reset re-establishes power-up state across CPU, PPU and APU without
// reloading the cartridge.
func (s *System) Reset() {
	s.cpu.Reset()
	s.bus.Reset()
	s.frame = 0
}

// Step advances the system by one CPU instruction (or one interrupt
// sequence, when the CPU has an NMI or IRQ to service) and the PPU/APU
// cycles that occur alongside it (3 PPU dots and one APU tick per CPU
// cycle), returning its CPU cycle cost. The PPU's NMI line
// is polled into the CPU after every PPU dot, since an instruction can
// be mid-execution when VBlank starts and the core doesn't otherwise
// model sub-instruction bus timing. A $4014 write during the instruction
// arms an OAM DMA stall (513/514 cycles), which is charged here and
// folded into the PPU/APU catch-up alongside the instruction's own cost.
func (s *System) Step() (int, error) {
	s.bus.SetCycleContext(s.cpu.Cycles(), s.frame)

	cycles, err := s.cpu.Step()
	if err != nil {
		e := newError(ErrInvalidOpcode, err)
		e.PC = s.cpu.PC
		return 0, e
	}

	if stall := s.bus.PendingDMAStallCycles(); stall > 0 {
		s.cpu.Stall(stall)
		cycles += stall
	}

	s.advancePPUAndAPU(cycles)
	return cycles, nil
}

func (s *System) advancePPUAndAPU(cpuCycles int) {
	for i := 0; i < cpuCycles; i++ {
		for d := 0; d < 3; d++ {
			s.bus.PPU.Step()
			if s.bus.PPU.NMIPending() {
				s.cpu.SetNMI(true)
				s.cpu.SetNMI(false)
			}
		}
		s.bus.APU.Step()
	}
}

// RunFrame steps the system until one NTSC frame's worth of CPU cycles
// (29,780.67, truncated to 29,780) has elapsed, then notifies observers
// of the frame boundary.
func (s *System) RunFrame() error {
	target := s.cpu.Cycles() + cyclesPerFrame
	for s.cpu.Cycles() < target {
		if _, err := s.Step(); err != nil {
			return err
		}
	}
	s.frame++
	s.bus.NotifyFrameEnd(s.frame)
	return nil
}

// Framebuffer returns the current 256x240 palette-index framebuffer.
// Each byte is a 6-bit NES palette index suitable for internal/palette
// lookup.
func (s *System) Framebuffer() *[256 * 240]uint8 {
	return s.bus.PPU.FrameBuffer()
}

// AudioSample pops the next pending APU sample, if any.
func (s *System) AudioSample() (float32, bool) {
	return s.bus.APU.PopSample()
}

// SetButton updates one controller's button state. controllerID is 1 or
// 2; any other value is a no-op.
func (s *System) SetButton(controllerID int, button controller.Button, pressed bool) {
	s.bus.SetButton(controllerID, button, pressed)
}

// AttachObserver registers a bus observer. Call only between Step/RunFrame
// calls, never from within an observer callback.
func (s *System) AttachObserver(o bus.Observer) {
	s.bus.AttachObserver(o)
}

// ClearObservers removes every registered bus observer.
func (s *System) ClearObservers() {
	s.bus.ClearObservers()
}

// ReadMemory performs a non-side-effecting peek at a CPU address, for
// debuggers and tests that must not disturb PPU/controller latch state.
func (s *System) ReadMemory(addr uint16) uint8 {
	return s.bus.Peek(addr)
}

// Frame reports the number of frames completed via RunFrame.
func (s *System) Frame() uint64 { return s.frame }

// CPUCycles reports the CPU's running cycle counter since Reset.
func (s *System) CPUCycles() uint64 { return s.cpu.Cycles() }
