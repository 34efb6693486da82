package memory

import (
	"fmt"
	"log/slog"

	"github.com/pocketgb/pocketgb/gb/addr"
	"github.com/pocketgb/pocketgb/gb/bit"
	"github.com/pocketgb/pocketgb/gb/interrupt"
	"github.com/pocketgb/pocketgb/gb/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnused
	regionIO
	regionHRAM
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// MMU allows access to all memory mapped I/O and data/registers. It owns the
// interrupt.Controller: the Timer reports a Set back from its Tick, which
// MMU.Tick applies; the serial port (through the callback New wires to it)
// and the PPU call Request on Interrupts directly.
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	regionMap [256]memRegion

	joypad *Joypad

	serial SerialPort
	timer  Timer

	Interrupts interrupt.Controller

	bootROM         []byte
	bootROMDisabled bool
}

// LoadBootROM overlays the given 256 byte boot ROM image over cartridge bank
// 0 at 0x0000-0x00FF. The overlay is removed the moment the running program
// writes a value with bit 0 set to addr.BootROMDisable; a write with bit 0
// clear, 0 included, leaves it mapped.
func (m *MMU) LoadBootROM(data []byte) error {
	if len(data) != 0x100 {
		return fmt.Errorf("boot ROM must be exactly 256 bytes, got %d", len(data))
	}
	m.bootROM = data
	m.bootROMDisabled = false
	return nil
}

// New creates a new memory unit with default data, i.e. no cartridge loaded.
// Equivalent to turning on a Gameboy without a cartridge in.
func New() *MMU {
	mmu := &MMU{
		memory: make([]byte, 0x10000),
		cart:   NewCartridge(),
		joypad: NewJoypad(),
	}
	mmu.mbc = NewNoMBC(mmu.cart.Data())
	mmu.serial = serial.NewLogSink(func() { mmu.Interrupts.Request(interrupt.Serial) })
	initRegionMap(mmu)
	return mmu
}

// NewWithCartridge creates a new memory unit with the provided cartridge
// loaded and its MBC wired according to the cartridge's header.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart

	switch cart.MBCType {
	case NoMBCType:
		mmu.mbc = NewNoMBC(cart.Data())
	case MBC1Type:
		mmu.mbc = NewMBC1(cart.Data(), cart.HasBattery, cart.RAMBankCount)
	case MBC2Type:
		mmu.mbc = NewMBC2(cart.Data(), cart.HasBattery)
	case MBC3Type:
		mmu.mbc = NewMBC3(cart.Data(), cart.HasRTC, cart.HasBattery, cart.RAMBankCount)
	case MBC5Type:
		mmu.mbc = NewMBC5(cart.Data(), cart.HasRumble, cart.HasBattery, cart.RAMBankCount)
	default:
		panic(fmt.Sprintf("unsupported MBC type: %d", cart.MBCType))
	}

	return mmu
}

// Tick advances the peripherals owned directly by the MMU (timer, serial)
// and applies whatever interrupts they report.
func (m *MMU) Tick(cycles int) {
	m.Interrupts.RequestSet(m.timer.Tick(cycles))
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
}

// rtcTicker is implemented by MBCs that carry a real-time clock (MBC3).
type rtcTicker interface {
	Tick(seconds int)
}

// TickRTC advances an RTC-bearing cartridge's clock by the given number of
// elapsed seconds. A no-op for cartridges without one. The orchestrator
// calls this once per elapsed second of emulated frames, since persisting
// real wall-clock time across runs is out of scope.
func (m *MMU) TickRTC(seconds int) {
	if ticker, ok := m.mbc.(rtcTicker); ok {
		ticker.Tick(seconds)
	}
}

// SetTimerSeed initializes the internal timer divider seed and DIV register.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

func initRegionMap(m *MMU) {
	// ROM: 0x0000-0x7FFF
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	// VRAM: 0x8000-0x9FFF
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	// External RAM: 0xA000-0xBFFF
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	// Work RAM: 0xC000-0xDFFF
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	// Echo RAM: 0xE000-0xFDFF
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM: 0xFE00-0xFE9F, Unused: 0xFEA0-0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM: 0xFF00-0xFFFF
	m.regionMap[0xFF] = regionIO
}

func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	value := m.Read(address)
	if set {
		value = bit.Set(index, value)
	} else {
		value = bit.Reset(index, value)
	}
	m.Write(address, value)
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if !m.bootROMDisabled && m.bootROM != nil && address < 0x100 {
			return m.bootROM[address]
		}
		if m.mbc == nil {
			slog.Warn("reading from ROM/external RAM with no cartridge", "addr", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		return m.memory[address]
	case regionIO:
		switch {
		case address == addr.P1:
			return m.joypad.Read()
		case address == addr.SB || address == addr.SC:
			return m.serial.Read(address)
		case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
			return m.timer.Read(address)
		case address == addr.IE:
			return m.Interrupts.ReadIE()
		case address == addr.IF:
			return m.Interrupts.ReadIF()
		default:
			return m.memory[address]
		}
	default:
		panic(fmt.Sprintf("attempted read at unmapped address: 0x%X", address))
	}
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		if m.mbc == nil {
			slog.Warn("writing to ROM with no cartridge", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionVRAM:
		m.memory[address] = value
	case regionExtRAM:
		if m.mbc == nil {
			slog.Warn("writing to external RAM with no cartridge", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionWRAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		m.memory[address] = value
	case regionIO:
		switch {
		case address == addr.P1:
			m.joypad.Write(value)
		case address == addr.SB || address == addr.SC:
			m.serial.Write(address, value)
		case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
			m.timer.Write(address, value)
		case address == addr.IE:
			m.Interrupts.WriteIE(value)
		case address == addr.IF:
			m.Interrupts.WriteIF(value)
		case address == addr.DMA:
			m.doDMATransfer(value)
		case address == addr.BootROMDisable:
			if value&0x01 != 0 {
				m.bootROMDisabled = true
			}
		case address == addr.LY:
			// LY is hardware read-only; the PPU is the only writer.
		default:
			m.memory[address] = value
		}
	default:
		panic(fmt.Sprintf("attempted write at unmapped address: 0x%X", address))
	}
}

// doDMATransfer performs the instantaneous 160-byte OAM DMA copy. Real
// hardware takes 160 M-cycles and locks out non-HRAM access during the
// transfer; since sub-instruction bus timing is out of scope, this copies
// the whole block in one step.
func (m *MMU) doDMATransfer(value byte) {
	sourceAddr := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		m.memory[0xFE00+i] = m.Read(sourceAddr + i)
	}
	m.memory[addr.DMA] = value
}

// SetLY is the PPU's own path for updating the current scanline. LY is
// hardware read-only from the guest's perspective (Write drops writes to
// it), so the PPU bypasses Write and stores the byte directly.
func (m *MMU) SetLY(value byte) {
	m.memory[addr.LY] = value
}

// HandleKeyPress marks a joypad button/direction as pressed and requests the
// Joypad interrupt if this is a new high-to-low transition on a selected line.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	before := m.joypad.Read()
	m.joypad.Press(key)
	after := m.joypad.Read()

	if before&^after&0x0F != 0 {
		m.Interrupts.Request(interrupt.Joypad)
	}
}

// HandleKeyRelease marks a joypad button/direction as released.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}
