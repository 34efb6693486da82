package memory

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	titleAddress          = 0x0134
	titleLength           = 16
	cartridgeTypeAddress  = 0x0147
	romSizeAddress        = 0x0148
	ramSizeAddress        = 0x0149
	headerChecksumAddress = 0x014D
)

// MBCType identifies which memory-bank-controller variant a cartridge uses,
// decoded from the header byte at 0x0147.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC2Type
	MBC3Type
	MBC5Type
)

// Cartridge owns the ROM image and parsed header metadata. It does not
// perform banking itself; that is the job of the MBC built from it.
type Cartridge struct {
	data []byte

	Title          string
	MBCType        MBCType
	HasBattery     bool
	HasRTC         bool
	HasRumble      bool
	ROMBankCount   int
	RAMBankCount   uint8
	HeaderChecksum uint8
}

// Data returns the raw ROM image backing the cartridge.
func (c *Cartridge) Data() []byte {
	return c.data
}

// NewCartridge returns an empty 32 KiB cartridge with no mapper, useful for
// tests and for powering on the machine with no ROM inserted.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:         make([]byte, 0x8000),
		MBCType:      NoMBCType,
		ROMBankCount: 2,
	}
}

// NewCartridgeWithData parses a raw ROM image and returns the cartridge it
// describes. It fails with a diagnostic naming the offending header field
// when the cartridge-type, ROM-size or RAM-size codes are not recognized.
func NewCartridgeWithData(data []byte) (*Cartridge, error) {
	if len(data) < 0x150 {
		return nil, fmt.Errorf("cartridge: image too small to contain a header (%d bytes)", len(data))
	}

	typeByte := data[cartridgeTypeAddress]
	mbcType, hasBattery, hasRTC, hasRumble, err := decodeCartridgeType(typeByte)
	if err != nil {
		return nil, err
	}

	romBanks, err := decodeROMSize(data[romSizeAddress])
	if err != nil {
		return nil, err
	}

	ramBanks, err := decodeRAMSize(data[ramSizeAddress])
	if err != nil {
		return nil, err
	}

	cart := &Cartridge{
		data:           append([]byte(nil), data...),
		Title:          cleanTitle(data[titleAddress : titleAddress+titleLength]),
		MBCType:        mbcType,
		HasBattery:     hasBattery,
		HasRTC:         hasRTC,
		HasRumble:      hasRumble,
		ROMBankCount:   romBanks,
		RAMBankCount:   ramBanks,
		HeaderChecksum: data[headerChecksumAddress],
	}

	return cart, nil
}

// decodeCartridgeType maps the 0x0147 byte to an MBC variant. Only the
// subset of real cartridge-type codes relevant to No-MBC/MBC1/2/3/5 is
// recognized; anything else is an invalid-header error.
func decodeCartridgeType(b byte) (mbc MBCType, battery, rtc, rumble bool, err error) {
	switch b {
	case 0x00, 0x08, 0x09:
		return NoMBCType, false, false, false, nil
	case 0x01, 0x02:
		return MBC1Type, false, false, false, nil
	case 0x03:
		return MBC1Type, true, false, false, nil
	case 0x05:
		return MBC2Type, false, false, false, nil
	case 0x06:
		return MBC2Type, true, false, false, nil
	case 0x0F, 0x10:
		return MBC3Type, true, true, false, nil
	case 0x11, 0x12:
		return MBC3Type, false, false, false, nil
	case 0x13:
		return MBC3Type, true, false, false, nil
	case 0x19, 0x1A:
		return MBC5Type, false, false, false, nil
	case 0x1B:
		return MBC5Type, true, false, false, nil
	case 0x1C, 0x1D:
		return MBC5Type, false, false, true, nil
	case 0x1E:
		return MBC5Type, true, false, true, nil
	default:
		return 0, false, false, false, fmt.Errorf("cartridge: unsupported cartridge type byte 0x%02X at 0x0147", b)
	}
}

// decodeROMSize maps the 0x0148 byte to a bank count (16 KiB each).
func decodeROMSize(b byte) (int, error) {
	if b > 8 {
		return 0, fmt.Errorf("cartridge: reserved ROM size code 0x%02X at 0x0148", b)
	}
	return 2 << b, nil
}

// decodeRAMSize maps the 0x0149 byte to an 8 KiB bank count.
func decodeRAMSize(b byte) (uint8, error) {
	switch b {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	case 2:
		return 1, nil
	case 3:
		return 4, nil
	case 4:
		return 16, nil
	case 5:
		return 8, nil
	default:
		return 0, fmt.Errorf("cartridge: unsupported RAM size code 0x%02X at 0x0149", b)
	}
}

func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		switch {
		case b == 0:
			continue
		case unicode.IsPrint(rune(b)):
			runes = append(runes, rune(b))
		default:
			runes = append(runes, '?')
		}
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(untitled)"
	}
	return title
}
