package video

// GBColor is one of the DMG's four shades, already expanded to RGBA8888 so
// the terminal frontend and any future framebuffer sink can blit it without
// a second palette lookup.
type GBColor uint32

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

// dmgShades maps a 2-bit color index, as produced by a palette register
// lookup, to its displayed shade. Index 0 is always the lightest shade
// before BGP/OBP0/OBP1 remapping is applied by the caller.
var dmgShades = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// ByteToColor converts a raw 2-bit shade index (0-3) into its GBColor.
func ByteToColor(value byte) GBColor {
	if value > 3 {
		return 0
	}
	return dmgShades[value]
}

// FrameBuffer is the 160x144 pixel grid the PPU renders one scanline at a
// time during pixel-transfer mode.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]uint32, FramebufferSize),
	}
}

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// ToSlice exposes the backing pixel buffer for frontends that blit it
// directly; callers must not resize it.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// Clear resets every pixel to 0 (not BlackColor - a blank, unrendered frame
// is distinct from an all-black rendered one).
func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = 0
	}
}
