// Package apu implements the NES Audio Processing Unit: two pulse
// channels, a triangle channel, a noise channel, a level-register-only
// DMC stub, the frame sequencer, and the non-linear mixer.
package apu

// lengthTable maps a 5-bit length-load field to its length-counter value.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var triangleSequence = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160,
	202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// envelope is the shared decay-counter unit used by pulse and noise.
type envelope struct {
	start        bool
	loop         bool
	constant     bool
	volume       uint8
	divider      uint8
	decayCounter uint8
}

func (e *envelope) clock() {
	if e.start {
		e.start = false
		e.decayCounter = 15
		e.divider = e.volume
		return
	}
	if e.divider == 0 {
		e.divider = e.volume
		switch {
		case e.decayCounter > 0:
			e.decayCounter--
		case e.loop:
			e.decayCounter = 15
		}
		return
	}
	e.divider--
}

func (e *envelope) output() uint8 {
	if e.constant {
		return e.volume
	}
	return e.decayCounter
}

type sweep struct {
	enabled bool
	period  uint8
	negate  bool
	shift   uint8
	reload  bool
	counter uint8
}

type pulse struct {
	env    envelope
	sweep  sweep
	duty   uint8
	timer  uint16
	timerC uint16
	step   uint8
	length uint8
	halt   bool

	ones bool // true for pulse 1 (one's-complement sweep negate)
}

func (p *pulse) writeControl(v uint8) {
	p.duty = (v >> 6) & 0x03
	p.halt = v&0x20 != 0
	p.env.loop = p.halt
	p.env.constant = v&0x10 != 0
	p.env.volume = v & 0x0F
	p.env.start = true
}

func (p *pulse) writeSweep(v uint8) {
	p.sweep.enabled = v&0x80 != 0
	p.sweep.period = (v >> 4) & 0x07
	p.sweep.negate = v&0x08 != 0
	p.sweep.shift = v & 0x07
	p.sweep.reload = true
}

func (p *pulse) writeTimerLow(v uint8) {
	p.timer = (p.timer & 0xFF00) | uint16(v)
}

func (p *pulse) writeTimerHigh(v uint8, enabled bool) {
	p.timer = (p.timer & 0x00FF) | uint16(v&0x07)<<8
	if enabled {
		p.length = lengthTable[(v>>3)&0x1F]
	}
	p.env.start = true
	p.step = 0
}

func (p *pulse) stepTimer() {
	if p.timerC == 0 {
		p.timerC = p.timer
		p.step = (p.step + 1) & 0x07
	} else {
		p.timerC--
	}
}

func (p *pulse) targetPeriod() (target uint16, muted bool) {
	change := p.timer >> p.sweep.shift
	if p.sweep.negate {
		if p.ones {
			target = p.timer - change - 1
		} else {
			target = p.timer - change
		}
	} else {
		target = p.timer + change
	}
	if p.timer < 8 || target > 0x7FF {
		muted = true
	}
	return target, muted
}

func (p *pulse) clockSweep() {
	target, muted := p.targetPeriod()
	if p.sweep.counter == 0 && p.sweep.enabled && p.sweep.shift > 0 && !muted {
		p.timer = target
	}
	if p.sweep.counter == 0 || p.sweep.reload {
		p.sweep.counter = p.sweep.period
		p.sweep.reload = false
	} else {
		p.sweep.counter--
	}
}

func (p *pulse) clockLength() {
	if !p.halt && p.length > 0 {
		p.length--
	}
}

func (p *pulse) output() uint8 {
	_, muted := p.targetPeriod()
	if p.length == 0 || muted || dutyTable[p.duty][p.step] == 0 {
		return 0
	}
	return p.env.output()
}

type triangle struct {
	haltControl bool
	linearLoad  uint8
	linear      uint8
	linearFlag  bool
	timer       uint16
	timerC      uint16
	step        uint8
	length      uint8
}

func (t *triangle) writeControl(v uint8) {
	t.haltControl = v&0x80 != 0
	t.linearLoad = v & 0x7F
}

func (t *triangle) writeTimerLow(v uint8) {
	t.timer = (t.timer & 0xFF00) | uint16(v)
}

func (t *triangle) writeTimerHigh(v uint8, enabled bool) {
	t.timer = (t.timer & 0x00FF) | uint16(v&0x07)<<8
	if enabled {
		t.length = lengthTable[(v>>3)&0x1F]
	}
	t.linearFlag = true
}

func (t *triangle) stepTimer() {
	if t.timerC == 0 {
		t.timerC = t.timer
		if t.length > 0 && t.linear > 0 {
			t.step = (t.step + 1) & 0x1F
		}
	} else {
		t.timerC--
	}
}

func (t *triangle) clockLinear() {
	if t.linearFlag {
		t.linear = t.linearLoad
	} else if t.linear > 0 {
		t.linear--
	}
	if !t.haltControl {
		t.linearFlag = false
	}
}

func (t *triangle) clockLength() {
	if !t.haltControl && t.length > 0 {
		t.length--
	}
}

func (t *triangle) output() uint8 {
	if t.length == 0 || t.linear == 0 || t.timer < 2 {
		return 0
	}
	return triangleSequence[t.step]
}

type noise struct {
	env    envelope
	halt   bool
	mode   bool
	period uint8
	timerC uint16
	lfsr   uint16
	length uint8
}

func newNoise() noise {
	return noise{lfsr: 1}
}

func (n *noise) writeControl(v uint8) {
	n.halt = v&0x20 != 0
	n.env.loop = n.halt
	n.env.constant = v&0x10 != 0
	n.env.volume = v & 0x0F
	n.env.start = true
}

func (n *noise) writePeriod(v uint8) {
	n.mode = v&0x80 != 0
	n.period = v & 0x0F
}

func (n *noise) writeLength(v uint8, enabled bool) {
	if enabled {
		n.length = lengthTable[(v>>3)&0x1F]
	}
	n.env.start = true
}

func (n *noise) stepTimer() {
	if n.timerC == 0 {
		n.timerC = noisePeriodTable[n.period]
		var fb uint16
		if n.mode {
			fb = (n.lfsr ^ (n.lfsr >> 6)) & 1
		} else {
			fb = (n.lfsr ^ (n.lfsr >> 1)) & 1
		}
		n.lfsr >>= 1
		n.lfsr |= fb << 14
		if n.lfsr == 0 {
			n.lfsr = 1
		}
	} else {
		n.timerC--
	}
}

func (n *noise) clockLength() {
	if !n.halt && n.length > 0 {
		n.length--
	}
}

func (n *noise) output() uint8 {
	if n.length == 0 || n.lfsr&1 != 0 {
		return 0
	}
	return n.env.output()
}

// dmc models the delta-modulation channel as a level register only: no
// sample-byte fetching (and so no CPU cycle stealing), per spec.
type dmc struct {
	irqEnable bool
	loop      bool
	rate      uint8
	level     uint8 // 7-bit output level
	address   uint16
	length    uint16
	remaining uint16
}

func (d *dmc) output() uint8 { return d.level & 0x7F }

// APU drives five channels and the frame sequencer that clocks their
// envelope, length, and sweep units, and mixes the result into a single
// sample stream.
type APU struct {
	pulse1, pulse2 pulse
	tri            triangle
	noi            noise
	dmc            dmc

	enabled [5]bool // pulse1, pulse2, triangle, noise, dmc

	fiveStep bool
	cycle    uint64

	sampleRate       int
	cpuHz            float64
	sampleAccumulator float64
	samples          []float32
}

// New constructs an APU producing 44100 Hz samples against the NTSC CPU
// clock. Pulse 1's sweep unit uses one's-complement negate; pulse 2 uses
// two's-complement, matching real hardware.
func New() *APU {
	a := &APU{
		pulse1:     pulse{ones: true},
		pulse2:     pulse{ones: false},
		noi:        newNoise(),
		sampleRate: 44100,
		cpuHz:      1789773.0,
	}
	return a
}

// Reset reinitializes all channel and sequencer state and discards any
// queued samples; the sample rate and CPU clock rate are kept.
func (a *APU) Reset() {
	sampleRate, cpuHz := a.sampleRate, a.cpuHz
	*a = APU{
		pulse1:     pulse{ones: true},
		pulse2:     pulse{ones: false},
		noi:        newNoise(),
		sampleRate: sampleRate,
		cpuHz:      cpuHz,
	}
}

// WriteRegister handles a CPU write to $4000-$4013, $4015, or $4017.
func (a *APU) WriteRegister(addr uint16, v uint8) {
	switch addr {
	case 0x4000:
		a.pulse1.writeControl(v)
	case 0x4001:
		a.pulse1.writeSweep(v)
	case 0x4002:
		a.pulse1.writeTimerLow(v)
	case 0x4003:
		a.pulse1.writeTimerHigh(v, a.enabled[0])
	case 0x4004:
		a.pulse2.writeControl(v)
	case 0x4005:
		a.pulse2.writeSweep(v)
	case 0x4006:
		a.pulse2.writeTimerLow(v)
	case 0x4007:
		a.pulse2.writeTimerHigh(v, a.enabled[1])
	case 0x4008:
		a.tri.writeControl(v)
	case 0x400A:
		a.tri.writeTimerLow(v)
	case 0x400B:
		a.tri.writeTimerHigh(v, a.enabled[2])
	case 0x400C:
		a.noi.writeControl(v)
	case 0x400E:
		a.noi.writePeriod(v)
	case 0x400F:
		a.noi.writeLength(v, a.enabled[3])
	case 0x4010:
		a.dmc.irqEnable = v&0x80 != 0
		a.dmc.loop = v&0x40 != 0
		a.dmc.rate = v & 0x0F
	case 0x4011:
		a.dmc.level = v & 0x7F
	case 0x4012:
		a.dmc.address = 0xC000 | uint16(v)<<6
	case 0x4013:
		a.dmc.length = uint16(v)<<4 | 1
	case 0x4015:
		a.writeEnable(v)
	case 0x4017:
		a.writeFrameCounter(v)
	}
}

func (a *APU) writeEnable(v uint8) {
	a.enabled[0] = v&0x01 != 0
	a.enabled[1] = v&0x02 != 0
	a.enabled[2] = v&0x04 != 0
	a.enabled[3] = v&0x08 != 0
	a.enabled[4] = v&0x10 != 0

	if !a.enabled[0] {
		a.pulse1.length = 0
	}
	if !a.enabled[1] {
		a.pulse2.length = 0
	}
	if !a.enabled[2] {
		a.tri.length = 0
	}
	if !a.enabled[3] {
		a.noi.length = 0
	}
	if !a.enabled[4] {
		a.dmc.remaining = 0
	} else if a.dmc.remaining == 0 {
		a.dmc.remaining = a.dmc.length
	}
}

func (a *APU) writeFrameCounter(v uint8) {
	a.fiveStep = v&0x80 != 0
	a.cycle = 0
	if a.fiveStep {
		a.clockQuarterFrame()
		a.clockHalfFrame()
	}
}

// ReadStatus reads $4015: per-channel "length counter nonzero" bits.
func (a *APU) ReadStatus() uint8 {
	var s uint8
	if a.pulse1.length > 0 {
		s |= 0x01
	}
	if a.pulse2.length > 0 {
		s |= 0x02
	}
	if a.tri.length > 0 {
		s |= 0x04
	}
	if a.noi.length > 0 {
		s |= 0x08
	}
	if a.dmc.remaining > 0 {
		s |= 0x10
	}
	return s
}

func (a *APU) clockQuarterFrame() {
	a.pulse1.env.clock()
	a.pulse2.env.clock()
	a.noi.env.clock()
	a.tri.clockLinear()
}

func (a *APU) clockHalfFrame() {
	a.pulse1.clockLength()
	a.pulse1.clockSweep()
	a.pulse2.clockLength()
	a.pulse2.clockSweep()
	a.tri.clockLength()
	a.noi.clockLength()
}

// Step advances the APU by one CPU cycle: pulse and noise timers tick
// every other CPU cycle, triangle ticks every CPU cycle, and the frame
// sequencer steps on its ~7457-cycle schedule.
func (a *APU) Step() {
	a.cycle++

	if a.cycle%2 == 0 {
		if a.enabled[0] {
			a.pulse1.stepTimer()
		}
		if a.enabled[1] {
			a.pulse2.stepTimer()
		}
		if a.enabled[3] {
			a.noi.stepTimer()
		}
	}
	if a.enabled[2] {
		a.tri.stepTimer()
	}

	a.stepFrameSequencer()
	a.generateSample()
}

func (a *APU) stepFrameSequencer() {
	if a.fiveStep {
		switch a.cycle {
		case 7457:
			a.clockQuarterFrame()
		case 14913:
			a.clockQuarterFrame()
			a.clockHalfFrame()
		case 22371:
			a.clockQuarterFrame()
		case 37281:
			a.clockQuarterFrame()
			a.clockHalfFrame()
			a.cycle = 0
		}
		return
	}
	switch a.cycle {
	case 7457:
		a.clockQuarterFrame()
	case 14913:
		a.clockQuarterFrame()
		a.clockHalfFrame()
	case 22371:
		a.clockQuarterFrame()
	case 29829:
		a.clockQuarterFrame()
		a.clockHalfFrame()
		a.cycle = 0
	}
}

func (a *APU) generateSample() {
	a.sampleAccumulator += float64(a.sampleRate) / a.cpuHz
	if a.sampleAccumulator < 1.0 {
		return
	}
	a.sampleAccumulator -= 1.0
	a.samples = append(a.samples, mix(
		a.pulse1.output(), a.pulse2.output(),
		a.tri.output(), a.noi.output(), a.dmc.output(),
	))
}

// mix applies the NES's non-linear DAC mixing formula.
func mix(p1, p2, t, n, d uint8) float32 {
	var pulseOut float64
	if sum := float64(p1) + float64(p2); sum > 0 {
		pulseOut = 95.88 / (8128.0/sum + 100.0)
	}

	var tndOut float64
	if tnd := float64(t)/8227.0 + float64(n)/12241.0 + float64(d)/22638.0; tnd > 0 {
		tndOut = 159.79 / (1.0/tnd + 100.0)
	}

	sample := float32((pulseOut+tndOut)*2 - 1)
	switch {
	case sample < -1:
		return -1
	case sample > 1:
		return 1
	default:
		return sample
	}
}

// PendingSamples drains and returns all samples generated since the last
// call.
func (a *APU) PendingSamples() []float32 {
	out := a.samples
	a.samples = nil
	return out
}

// PopSample removes and returns the oldest queued sample. ok is false
// when no sample is available yet.
func (a *APU) PopSample() (sample float32, ok bool) {
	if len(a.samples) == 0 {
		return 0, false
	}
	sample = a.samples[0]
	a.samples = a.samples[1:]
	return sample, true
}
