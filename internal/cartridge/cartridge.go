// Package cartridge parses iNES ROM images and implements the supported
// mapper hardware (NROM and GxROM).
package cartridge

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

// Mirror is the cartridge's nametable mirroring mode.
type Mirror uint8

const (
	MirrorHorizontal Mirror = iota
	MirrorVertical
	MirrorFourScreen
)

const (
	headerSize  = 16
	trainerSize = 512
	prgUnit     = 16 * 1024
	chrUnit     = 8 * 1024
	chrRAMSize  = 8 * 1024
	sramSize    = 8 * 1024
)

// ErrBadMagic, ErrTruncated and ErrUnsupportedMapper classify the ways a
// ROM image can fail to load.
var (
	ErrBadMagic          = errors.New("cartridge: bad iNES magic")
	ErrTruncated         = errors.New("cartridge: truncated ROM image")
	ErrUnsupportedMapper = errors.New("cartridge: unsupported mapper")
)

// Header is the parsed iNES header. It round-trips through Bytes so a
// header can be serialized back to its canonical 16-byte form.
type Header struct {
	PRGBanks uint8
	CHRBanks uint8
	MapperID uint8
	Mirror   Mirror
	Battery  bool
	Trainer  bool
}

// Bytes re-serializes the header's logical fields into canonical iNES
// header bytes (padding bytes beyond byte 7 are zeroed).
func (h Header) Bytes() [headerSize]byte {
	var b [headerSize]byte
	copy(b[0:4], []byte("NES\x1a"))
	b[4] = h.PRGBanks
	b[5] = h.CHRBanks

	var flags6 uint8
	switch h.Mirror {
	case MirrorVertical:
		flags6 |= 0x01
	case MirrorFourScreen:
		flags6 |= 0x08
	}
	if h.Battery {
		flags6 |= 0x02
	}
	if h.Trainer {
		flags6 |= 0x04
	}
	flags6 |= (h.MapperID & 0x0F) << 4
	b[6] = flags6
	b[7] = h.MapperID & 0xF0
	return b
}

func parseHeader(raw []byte) (Header, error) {
	if len(raw) < headerSize {
		return Header{}, fmt.Errorf("%w: short header", ErrTruncated)
	}
	if string(raw[0:4]) != "NES\x1a" {
		return Header{}, fmt.Errorf("%w: got %x", ErrBadMagic, raw[0:4])
	}

	flags6, flags7 := raw[6], raw[7]
	h := Header{
		PRGBanks: raw[4],
		CHRBanks: raw[5],
		MapperID: (flags7 & 0xF0) | (flags6 >> 4),
		Battery:  flags6&0x02 != 0,
		Trainer:  flags6&0x04 != 0,
	}
	switch {
	case flags6&0x08 != 0:
		h.Mirror = MirrorFourScreen
	case flags6&0x01 != 0:
		h.Mirror = MirrorVertical
	default:
		h.Mirror = MirrorHorizontal
	}
	return h, nil
}

// Mapper is the bank-switching contract a Cartridge delegates PRG/CHR
// access to. Implementations mutate only their own bank-register state.
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, value uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
}

// Cartridge owns ROM/RAM storage and header metadata for a loaded game.
// It is created once per ROM load and is immutable apart from mapper
// bank registers, PRG-RAM ($6000-$7FFF) and CHR-RAM writes.
type Cartridge struct {
	Header Header

	prg  []byte
	chr  []byte
	sram [sramSize]byte

	chrIsRAM bool
	mapper   Mapper
}

// Load parses an iNES byte image and constructs its mapper. It returns
// ErrBadMagic/ErrTruncated for malformed images and ErrUnsupportedMapper
// for a mapper ID outside {0, 66}.
func Load(data []byte) (*Cartridge, error) {
	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	offset := headerSize
	if header.Trainer {
		offset += trainerSize
	}

	prgSize := int(header.PRGBanks) * prgUnit
	if prgSize == 0 || offset+prgSize > len(data) {
		return nil, fmt.Errorf("%w: need %d PRG bytes, have %d", ErrTruncated, prgSize, len(data)-offset)
	}
	prg := append([]byte(nil), data[offset:offset+prgSize]...)
	offset += prgSize

	var chr []byte
	chrIsRAM := header.CHRBanks == 0
	if chrIsRAM {
		chr = make([]byte, chrRAMSize)
	} else {
		chrSize := int(header.CHRBanks) * chrUnit
		if offset+chrSize > len(data) {
			return nil, fmt.Errorf("%w: need %d CHR bytes, have %d", ErrTruncated, chrSize, len(data)-offset)
		}
		chr = append([]byte(nil), data[offset:offset+chrSize]...)
	}

	c := &Cartridge{
		Header:   header,
		prg:      prg,
		chr:      chr,
		chrIsRAM: chrIsRAM,
	}

	switch header.MapperID {
	case 0:
		c.mapper = newNROM(c)
	case 66:
		c.mapper = newGxROM(c)
	default:
		return nil, fmt.Errorf("%w: id %d", ErrUnsupportedMapper, header.MapperID)
	}

	glog.V(1).Infof("cartridge: loaded mapper %d, %d PRG bank(s), %d CHR bank(s), mirror=%d",
		header.MapperID, header.PRGBanks, header.CHRBanks, header.Mirror)
	return c, nil
}

// ReadPRG reads from $4020-$FFFF cartridge space via the active mapper.
func (c *Cartridge) ReadPRG(addr uint16) uint8 { return c.mapper.ReadPRG(addr) }

// WritePRG writes to $4020-$FFFF cartridge space via the active mapper.
func (c *Cartridge) WritePRG(addr uint16, value uint8) { c.mapper.WritePRG(addr, value) }

// ReadCHR reads pattern-table memory ($0000-$1FFF as seen by the PPU).
func (c *Cartridge) ReadCHR(addr uint16) uint8 { return c.mapper.ReadCHR(addr) }

// WriteCHR writes pattern-table memory; only takes effect on CHR-RAM.
func (c *Cartridge) WriteCHR(addr uint16, value uint8) { c.mapper.WriteCHR(addr, value) }

// Mirror reports the cartridge's current nametable mirroring mode.
func (c *Cartridge) Mirror() Mirror { return c.Header.Mirror }
