package cartridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildINES(prgBanks, chrBanks, mapperID uint8, mirrorVertical bool) []byte {
	var flags6 uint8 = (mapperID & 0x0F) << 4
	if mirrorVertical {
		flags6 |= 0x01
	}
	header := []byte{'N', 'E', 'S', 0x1A, prgBanks, chrBanks, flags6, mapperID & 0xF0, 0, 0, 0, 0, 0, 0, 0, 0}
	data := make([]byte, len(header)+int(prgBanks)*prgUnit+int(chrBanks)*chrUnit)
	copy(data, header)
	return data
}

func TestLoadRejectsBadMagic(t *testing.T) {
	data := buildINES(1, 1, 0, false)
	data[0] = 'X'
	_, err := Load(data)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestLoadRejectsTruncatedPRG(t *testing.T) {
	data := buildINES(2, 1, 0, false)
	data = data[:len(data)-chrUnit-1000] // cut into the second PRG bank
	_, err := Load(data)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestLoadRejectsUnsupportedMapper(t *testing.T) {
	data := buildINES(1, 1, 4, false)
	_, err := Load(data)
	require.ErrorIs(t, err, ErrUnsupportedMapper)
}

func TestNROM16KMirrorsAcrossBothHalves(t *testing.T) {
	data := buildINES(1, 1, 0, false)
	cart, err := Load(data)
	require.NoError(t, err)

	cart.mapper.WritePRG(0x8000, 0) // no-op, ROM region
	a := cart.ReadPRG(0x8000)
	b := cart.ReadPRG(0xC000)
	require.Equal(t, a, b, "16KB PRG must mirror into both $8000 and $C000 halves")
}

func TestNROMSRAMReadWrite(t *testing.T) {
	data := buildINES(1, 1, 0, false)
	cart, err := Load(data)
	require.NoError(t, err)

	cart.WritePRG(0x6000, 0x42)
	require.Equal(t, uint8(0x42), cart.ReadPRG(0x6000))
}

func TestHeaderBytesRoundTrip(t *testing.T) {
	h := Header{PRGBanks: 2, CHRBanks: 1, MapperID: 66, Mirror: MirrorVertical, Battery: true}
	b := h.Bytes()
	parsed, err := parseHeader(b[:])
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestGxROMBankSwitch(t *testing.T) {
	data := buildINES(4, 4, 66, false)
	// PRGBanks counts 16KB units as in the iNES standard, so 4 banks =
	// 64KB total, which is two 32KB GxROM banks; CHRBanks 4 = four 8KB
	// CHR banks. Mark the first byte of PRG bank 1 and of CHR bank 1.
	prgStart := headerSize
	chrStart := prgStart + 4*prgUnit
	data[prgStart+gxromPRGBank] = 0xB1
	data[chrStart+gxromCHRBank] = 0xC1
	cart, err := Load(data)
	require.NoError(t, err)

	cart.WritePRG(0x8000, 0x01) // select PRG bank 0, CHR bank 1
	require.Equal(t, uint8(0x00), cart.ReadPRG(0x8000))
	require.Equal(t, uint8(0xC1), cart.ReadCHR(0x0000))

	cart.WritePRG(0x8000, 0x10) // PRG bank 1 (bits 4-5), CHR bank 0
	require.NotPanics(t, func() { cart.ReadPRG(0x8000) })
	require.Equal(t, uint8(0xB1), cart.ReadPRG(0x8000))
	require.Equal(t, uint8(0x00), cart.ReadCHR(0x0000))
}

func TestMirrorReportsHeaderValue(t *testing.T) {
	data := buildINES(1, 1, 0, true)
	cart, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, MirrorVertical, cart.Mirror())
}

func TestErrorsAreDistinguishable(t *testing.T) {
	require.False(t, errors.Is(ErrBadMagic, ErrTruncated))
}
