// Package ppu implements the NES Picture Processing Unit (2C02): VRAM,
// OAM, palette RAM, the loopy scroll registers, and the background/sprite
// pixel pipeline.
package ppu

// CHR is the contract the PPU uses to reach cartridge pattern-table
// memory; the bus wires this to the loaded cartridge.
type CHR interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
}

// Mirror mirrors the cartridge package's nametable mirroring modes so the
// PPU doesn't need to import cartridge.
type Mirror uint8

const (
	MirrorHorizontal Mirror = iota
	MirrorVertical
	MirrorFourScreen
)

const (
	ctrlNMIEnable     = 0x80
	ctrlSpriteSize    = 0x20
	ctrlBGPattern     = 0x10
	ctrlSpritePattern = 0x08
	ctrlIncrement32   = 0x04
	ctrlNametableMask = 0x03

	maskShowBG      = 0x08
	maskShowSprites = 0x10

	statusVBlank   = 0x80
	statusSprite0  = 0x40
	statusOverflow = 0x20
)

// PPU is the NES 2C02. One Step call advances exactly one dot.
type PPU struct {
	chr    CHR
	mirror Mirror

	nametables [0x800]uint8
	palette    [32]uint8
	oam        [256]uint8

	ctrl, mask, status, oamAddr uint8

	v, t    uint16
	fineX   uint8
	writeLo bool
	readBuf uint8

	scanline int
	dot      int
	frame    uint64
	oddFrame bool

	nmiPending bool

	frameBuffer [256 * 240]uint8

	spriteLine      [8]spriteInstance
	spriteLineCount int
}

type spriteInstance struct {
	x, y     uint8
	tile     uint8
	attr     uint8
	oamIndex int
}

// New creates a PPU with no cartridge attached yet; SetCHR/SetMirror must
// be called once a cartridge is loaded.
func New() *PPU {
	p := &PPU{}
	p.Reset()
	return p
}

// SetCHR attaches the cartridge's pattern-table interface.
func (p *PPU) SetCHR(chr CHR) { p.chr = chr }

// SetMirror sets the nametable mirroring mode from the cartridge header.
func (p *PPU) SetMirror(m Mirror) { p.mirror = m }

// Reset reinitializes registers and timing without clearing VRAM/OAM/the
// framebuffer (those persist across a reset on real hardware too, since
// reset doesn't touch memory).
func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status, p.oamAddr = 0, 0, 0, 0
	p.v, p.t, p.fineX = 0, 0, 0
	p.writeLo = false
	p.readBuf = 0
	p.scanline, p.dot = 0, 0
	p.frame, p.oddFrame = 0, false
	p.nmiPending = false
	p.spriteLineCount = 0
}

// NMIPending reports whether VBlank-entry NMI delivery is armed, and
// clears the flag as a side effect (the System calls this once per tick
// and must deliver the NMI it observes).
func (p *PPU) NMIPending() bool {
	pending := p.nmiPending
	p.nmiPending = false
	return pending
}

// FrameBuffer returns the current 256x240 palette-index framebuffer.
func (p *PPU) FrameBuffer() *[256 * 240]uint8 { return &p.frameBuffer }

// ReadRegister handles a CPU read of $2000-$2007 (already reduced mod 8
// by the bus).
func (p *PPU) ReadRegister(reg uint16) uint8 {
	switch reg & 7 {
	case 2:
		v := p.status
		p.status &^= statusVBlank
		p.writeLo = false
		return v
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readData()
	default:
		return 0
	}
}

// WriteRegister handles a CPU write to $2000-$2007.
func (p *PPU) WriteRegister(reg uint16, v uint8) {
	switch reg & 7 {
	case 0:
		p.ctrl = v
		p.t = (p.t &^ 0x0C00) | (uint16(v&ctrlNametableMask) << 10)
	case 1:
		p.mask = v
	case 3:
		p.oamAddr = v
	case 4:
		p.oam[p.oamAddr] = v
		p.oamAddr++
	case 5:
		if !p.writeLo {
			p.fineX = v & 0x07
			p.t = (p.t &^ 0x001F) | uint16(v>>3)
		} else {
			p.t = (p.t &^ 0x73E0) | (uint16(v&0x07) << 12) | (uint16(v>>3) << 5)
		}
		p.writeLo = !p.writeLo
	case 6:
		if !p.writeLo {
			p.t = (p.t &^ 0x7F00) | (uint16(v&0x3F) << 8)
		} else {
			p.t = (p.t &^ 0x00FF) | uint16(v)
			p.v = p.t
		}
		p.writeLo = !p.writeLo
	case 7:
		p.writeData(v)
	}
}

// WriteOAM writes a byte directly into OAM, used by the bus's OAM DMA.
func (p *PPU) WriteOAM(addr uint8, v uint8) { p.oam[addr] = v }

// OAMAddr reports the current OAMADDR ($2003), the index a $4014 DMA
// burst must start writing at.
func (p *PPU) OAMAddr() uint8 { return p.oamAddr }

func (p *PPU) incrementAddr() {
	if p.ctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

func (p *PPU) readData() uint8 {
	addr := p.v & 0x3FFF
	var v uint8
	if addr >= 0x3F00 {
		v = p.readPalette(addr)
		p.readBuf = p.readVRAM(addr - 0x1000)
	} else {
		v = p.readBuf
		p.readBuf = p.readVRAM(addr)
	}
	p.incrementAddr()
	return v
}

func (p *PPU) writeData(v uint8) {
	addr := p.v & 0x3FFF
	if addr >= 0x3F00 {
		p.writePalette(addr, v)
	} else {
		p.writeVRAM(addr, v)
	}
	p.incrementAddr()
}

// readVRAM / writeVRAM decode $0000-$3EFF: CHR pattern tables below
// $2000, mirrored nametable RAM above.
func (p *PPU) readVRAM(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return p.chr.ReadCHR(addr)
	default:
		return p.nametables[p.mirrorNametable(addr)]
	}
}

func (p *PPU) writeVRAM(addr uint16, v uint8) {
	switch {
	case addr < 0x2000:
		p.chr.WriteCHR(addr, v)
	default:
		p.nametables[p.mirrorNametable(addr)] = v
	}
}

func (p *PPU) mirrorNametable(addr uint16) uint16 {
	addr = (addr - 0x2000) & 0x0FFF
	table := addr / 0x400
	offset := addr % 0x400

	var bank uint16
	switch p.mirror {
	case MirrorHorizontal:
		bank = table / 2 // {0,1}->0, {2,3}->1
	case MirrorVertical:
		bank = table % 2 // {0,2}->0, {1,3}->1
	default: // four-screen: flat wrap over the 2KiB RAM; $2000/$2800 and $2400/$2C00 share storage
		return (addr) & 0x7FF
	}
	return bank*0x400 + offset
}

func (p *PPU) readPalette(addr uint16) uint8 {
	return p.palette[paletteIndex(addr)]
}

func (p *PPU) writePalette(addr uint16, v uint8) {
	p.palette[paletteIndex(addr)] = v & 0x3F
}

func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx >= 0x10 && idx%4 == 0 {
		idx -= 0x10
	}
	return idx
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskShowBG|maskShowSprites) != 0
}

// Step advances the PPU by one dot (one PPU clock cycle), updating
// scanline/dot position, background/sprite evaluation, pixel output, and
// the VBlank/NMI flags.
func (p *PPU) Step() {
	p.processScanline()

	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > 261 {
			p.scanline = 0
			p.frame++
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *PPU) processScanline() {
	switch {
	case p.scanline >= 0 && p.scanline <= 239:
		p.visibleScanline()
	case p.scanline == 241 && p.dot == 1:
		p.status |= statusVBlank
		if p.ctrl&ctrlNMIEnable != 0 {
			p.nmiPending = true
		}
	case p.scanline == 261:
		p.preRenderScanline()
	}
}

// visibleScanline renders dots 1-256 and, at the scanline's end, performs
// the once-per-scanline bookkeeping a real PPU spreads across dots
// 256-257: incrementing the vertical scroll component for the next
// scanline and reloading the horizontal component from t. The spec
// composes each background pixel directly from the scroll state in t/v
// plus fine-X (§4.4), so coarse-X is not incremented dot-by-dot here —
// only once per scanline, which is sufficient for that formula and
// avoids a double-advance against the per-pixel column math.
func (p *PPU) visibleScanline() {
	if p.dot == 257 && p.renderingEnabled() {
		p.evaluateSprites(p.scanline)
	}
	if p.dot >= 1 && p.dot <= 256 {
		x := p.dot - 1
		p.renderPixel(x, p.scanline)
	}
	if p.dot == 256 && p.renderingEnabled() {
		p.incrementY()
	}
	if p.dot == 257 && p.renderingEnabled() {
		p.copyHorizontal()
	}
}

func (p *PPU) preRenderScanline() {
	if p.dot == 1 {
		p.status &^= statusVBlank | statusSprite0 | statusOverflow
		p.nmiPending = false
	}
	if p.dot == 256 && p.renderingEnabled() {
		p.incrementY()
	}
	if p.dot == 257 && p.renderingEnabled() {
		p.copyHorizontal()
		p.evaluateSprites(-1) // prepares sprite line for scanline 0
	}
	if p.dot >= 280 && p.dot <= 304 && p.renderingEnabled() {
		p.copyVertical()
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontal() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyVertical() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// renderPixel computes the composed background+sprite pixel for (x,y)
// and writes its palette index into the framebuffer.
func (p *PPU) renderPixel(x, y int) {
	bgPixel, bgOpaque := p.backgroundPixelAt(x, y)
	sprPixel, sprOpaque, sprPriority, isSprite0 := p.spritePixelAt(x)

	if isSprite0 && bgOpaque && sprOpaque && x != 255 {
		p.status |= statusSprite0
	}

	var colorIndex uint8
	switch {
	case !sprOpaque && !bgOpaque:
		colorIndex = p.palette[0]
	case !sprOpaque:
		colorIndex = bgPixel
	case !bgOpaque:
		colorIndex = sprPixel
	case sprPriority:
		colorIndex = bgPixel
	default:
		colorIndex = sprPixel
	}

	p.frameBuffer[y*256+x] = colorIndex & 0x3F
}

// backgroundPixelAt derives the palette-RAM index for the background
// layer at screen column x of the scanline currently being drawn, per
// §4.4: "using the scroll state in t [here, the live v, which t is
// copied into at scroll-register writes and line boundaries] plus
// fine-X, compute (scrolled_x, scrolled_y)". opaque is false when the
// 2-bit pixel value is 0 (the universal background color applies).
func (p *PPU) backgroundPixelAt(x, y int) (colorIndex uint8, opaque bool) {
	if p.mask&maskShowBG == 0 {
		return p.palette[0], false
	}

	// Horizontal: total column within the two-nametable-wide (512px)
	// virtual plane, wrapping the nametable-X select bit every 256px.
	totalCol := int(p.v&0x001F)*8 + int(p.fineX) + x
	ntXBit := (p.v >> 10) & 1
	if (totalCol/256)%2 != 0 {
		ntXBit ^= 1
	}
	tileX := (totalCol / 8) % 32
	pixelX := totalCol % 8

	tileY := int((p.v >> 5) & 0x1F)
	ntYBit := (p.v >> 11) & 1
	pixelY := int((p.v >> 12) & 0x07)

	nametableBase := 0x2000 + (ntYBit<<1|ntXBit)<<10
	tileAddr := nametableBase + uint16(tileY*32+tileX)
	tileIndex := p.readVRAM(tileAddr & 0x2FFF)

	attrAddr := nametableBase + 0x3C0 + uint16((tileY/4)*8+(tileX/4))
	attrByte := p.readVRAM(attrAddr & 0x2FFF)
	shift := uint(((tileY%4)/2)*4 + ((tileX%4)/2)*2)
	paletteHigh := (attrByte >> shift) & 0x03

	patternBase := uint16(0x0000)
	if p.ctrl&ctrlBGPattern != 0 {
		patternBase = 0x1000
	}
	patAddr := patternBase + uint16(tileIndex)*16 + uint16(pixelY)
	lo := p.chr.ReadCHR(patAddr)
	hi := p.chr.ReadCHR(patAddr + 8)

	bit := uint(7 - pixelX)
	pixelValue := ((hi>>bit)&1)<<1 | (lo>>bit)&1
	if pixelValue == 0 {
		return p.palette[0], false
	}
	return p.palette[uint16(paletteHigh)*4+uint16(pixelValue)], true
}

// evaluateSprites scans all 64 OAM entries for the ones visible on
// `scanline + 1` (sprites are prefetched one scanline ahead of display,
// matching real hardware's dot-257 evaluation) and keeps up to the first
// eight in scanline order; beyond eight, STATUS's overflow bit is set.
func (p *PPU) evaluateSprites(scanline int) {
	targetY := scanline + 1
	height := 8
	if p.ctrl&ctrlSpriteSize != 0 {
		height = 16
	}

	p.spriteLineCount = 0
	overflow := false
	for i := 0; i < 64; i++ {
		y := int(p.oam[i*4+0]) + 1
		if targetY < y || targetY >= y+height {
			continue
		}
		if p.spriteLineCount < 8 {
			p.spriteLine[p.spriteLineCount] = spriteInstance{
				y:        p.oam[i*4+0],
				tile:     p.oam[i*4+1],
				attr:     p.oam[i*4+2],
				x:        p.oam[i*4+3],
				oamIndex: i,
			}
			p.spriteLineCount++
		} else {
			overflow = true
			break
		}
	}
	if overflow {
		p.status |= statusOverflow
	}
}

// spritePixelAt returns the first opaque sprite pixel covering column x
// on the scanline currently being drawn.
func (p *PPU) spritePixelAt(x int) (colorIndex uint8, opaque bool, behindBG bool, isSprite0 bool) {
	if p.mask&maskShowSprites == 0 {
		return 0, false, false, false
	}
	height := 8
	if p.ctrl&ctrlSpriteSize != 0 {
		height = 16
	}

	for i := 0; i < p.spriteLineCount; i++ {
		s := p.spriteLine[i]
		spriteX := int(s.x)
		if x < spriteX || x >= spriteX+8 {
			continue
		}
		row := p.scanline - (int(s.y) + 1)
		col := x - spriteX
		if s.attr&0x40 != 0 {
			col = 7 - col
		}
		if s.attr&0x80 != 0 {
			row = height - 1 - row
		}

		var tile uint8
		var patternBase uint16
		if height == 16 {
			tile = s.tile &^ 1
			patternBase = uint16(s.tile&1) * 0x1000
			if row >= 8 {
				tile++
				row -= 8
			}
		} else {
			tile = s.tile
			patternBase = 0
			if p.ctrl&ctrlSpritePattern != 0 {
				patternBase = 0x1000
			}
		}

		patAddr := patternBase + uint16(tile)*16 + uint16(row)
		lo := p.chr.ReadCHR(patAddr)
		hi := p.chr.ReadCHR(patAddr + 8)
		bit := uint(7 - col)
		pixelValue := ((hi>>bit)&1)<<1 | (lo>>bit)&1
		if pixelValue == 0 {
			continue
		}

		paletteHigh := s.attr & 0x03
		color := p.palette[0x10+uint16(paletteHigh)*4+uint16(pixelValue)]
		return color, true, s.attr&0x20 != 0, s.oamIndex == 0
	}
	return 0, false, false, false
}

// Scanline and Dot expose raster position for observers/tests.
func (p *PPU) Scanline() int { return p.scanline }
func (p *PPU) Dot() int      { return p.dot }
func (p *PPU) Frame() uint64 { return p.frame }

// Status peeks at STATUS without the read side effects, for tests and
// the non-side-effecting memory-read entry point.
func (p *PPU) Status() uint8 { return p.status }
