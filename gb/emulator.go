// Package gb ties together the CPU, MMU and PPU into the per-frame
// execution loop a host (terminal renderer, test harness) drives.
package gb

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pocketgb/pocketgb/gb/cpu"
	"github.com/pocketgb/pocketgb/gb/memory"
	"github.com/pocketgb/pocketgb/gb/video"
)

// cyclesPerFrame is the DMG's T-cycle budget for one 154-scanline frame
// (154 * 456). The host vertical refresh rate this produces, ~59.73 Hz,
// is the hardware-accurate figure behind the commonly quoted "~60 FPS".
const cyclesPerFrame = 70224

// Emulator is the root struct tying a CPU, PPU and the shared bus together
// into a single owning context, as opposed to components holding pointers
// back to each other.
type Emulator struct {
	cpu *cpu.CPU
	gpu *video.GPU
	mem *memory.MMU

	frameCount uint64
}

// New creates an emulator with no cartridge loaded, equivalent to turning
// on a DMG with an empty cartridge slot.
func New() *Emulator {
	return newWithMMU(memory.NewWithCartridge(memory.NewCartridge()))
}

// NewWithROM loads the cartridge image at path and returns an emulator
// ready to run it.
func NewWithROM(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return nil, fmt.Errorf("parsing cartridge header: %w", err)
	}

	slog.Debug("loaded ROM", "path", path, "size", len(data))

	return newWithMMU(memory.NewWithCartridge(cart)), nil
}

func newWithMMU(mem *memory.MMU) *Emulator {
	return &Emulator{
		cpu: cpu.New(mem),
		gpu: video.NewGpu(mem),
		mem: mem,
	}
}

// LoadBootROM overlays a 256 byte boot ROM image ahead of the cartridge,
// so execution starts at 0x0000 rather than the post-boot state CPU.New
// otherwise initializes directly.
func (e *Emulator) LoadBootROM(data []byte) error {
	if err := e.mem.LoadBootROM(data); err != nil {
		return err
	}
	e.cpu.Reset(0x0000)
	return nil
}

// RunFrame executes instructions until one frame's cycle budget (70224
// T-cycles) has been consumed, advancing the PPU after every instruction.
// Cycles are delivered to peripherals only after each opcode completes, and
// interrupts raised by the timer or PPU are observed by the CPU only on the
// following instruction's boundary, never mid-instruction.
func (e *Emulator) RunFrame() {
	total := 0
	for total < cyclesPerFrame {
		cycles := e.cpu.Step()
		e.gpu.Tick(cycles)
		total += cycles
	}

	e.frameCount++
	if e.frameCount%60 == 0 {
		slog.Debug("frame completed", "frame", e.frameCount, "pc", fmt.Sprintf("0x%04X", e.cpu.PC()))
		e.mem.TickRTC(1)
	}
}

// GetCurrentFrame returns the framebuffer as it stands right now. The PPU
// may be mid-scanline; callers that need a torn-free frame should only read
// immediately after RunFrame returns.
func (e *Emulator) GetCurrentFrame() *video.FrameBuffer {
	return e.gpu.GetFrameBuffer()
}

// HandleKeyPress marks a joypad button as pressed, requesting the Joypad
// interrupt on a new high-to-low transition.
func (e *Emulator) HandleKeyPress(key memory.JoypadKey) {
	e.mem.HandleKeyPress(key)
}

// HandleKeyRelease marks a joypad button as released.
func (e *Emulator) HandleKeyRelease(key memory.JoypadKey) {
	e.mem.HandleKeyRelease(key)
}

// GetMMU exposes the bus, used by the disassembler and test harnesses.
func (e *Emulator) GetMMU() *memory.MMU {
	return e.mem
}

// GetCPU exposes the CPU, used by the disassembler and test harnesses.
func (e *Emulator) GetCPU() *cpu.CPU {
	return e.cpu
}

// FrameCount reports how many complete frames have been run.
func (e *Emulator) FrameCount() uint64 {
	return e.frameCount
}
