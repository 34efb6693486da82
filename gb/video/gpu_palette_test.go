package video

import (
	"testing"

	"github.com/pocketgb/pocketgb/gb/addr"
)

// solidColorTile builds a tile whose every pixel decodes to colorIndex
// (0-3), by setting or clearing the same bit pair in both planes for every
// column.
func solidColorTile(colorIndex int) [8][2]byte {
	var low, high byte
	if colorIndex&1 != 0 {
		low = 0xFF
	}
	if colorIndex&2 != 0 {
		high = 0xFF
	}
	return uniformTile(low, high)
}

func TestBGPPaletteMapsAllFourShades(t *testing.T) {
	cases := []struct {
		desc  string
		bgp   byte
		color int
		want  GBColor
	}{
		{"default palette, color 0", 0xE4, 0, WhiteColor},
		{"default palette, color 1", 0xE4, 1, LightGreyColor},
		{"default palette, color 2", 0xE4, 2, DarkGreyColor},
		{"default palette, color 3", 0xE4, 3, BlackColor},
		{"inverted palette, color 0", 0x1B, 0, BlackColor},
		{"inverted palette, color 3", 0x1B, 3, WhiteColor},
		{"all-black palette collapses every color", 0xFF, 1, BlackColor},
		{"all-white palette collapses every color", 0x00, 2, WhiteColor},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			gpu, mmu := newBackgroundGPU()
			mmu.Write(addr.BGP, tc.bgp)
			mmu.Write(addr.TileMap0, 0x00)
			writeTileRows(mmu, addr.TileData0, solidColorTile(tc.color))

			gpu.line = 0
			gpu.drawScanline()

			if got := gpu.framebuffer.GetPixel(0, 0); got != uint32(tc.want) {
				t.Errorf("BGP %#02x color %d = %#08X; want %#08X", tc.bgp, tc.color, got, uint32(tc.want))
			}
		})
	}
}

// TestWindowUsesTheSameBGPPaletteAsBackground checks that the window layer
// reads its colors from BGP (not its own register - the DMG has none) and
// that it only starts painting at WX/WY, leaving the background visible
// before it.
func TestWindowUsesTheSameBGPPaletteAsBackground(t *testing.T) {
	gpu, mmu := newBackgroundGPU()
	mmu.Write(addr.LCDC, 0xF1) // LCD, window map 1, window on, unsigned tiles, BG on
	mmu.Write(addr.BGP, 0x1B) // inverted, so a mismatch is obvious

	writeTileRows(mmu, addr.TileData0, solidColorTile(0))    // BG tile: color 0 -> black under 0x1B
	writeTileRows(mmu, addr.TileData0+0x10, solidColorTile(3)) // window tile: color 3 -> white under 0x1B

	for i := uint16(0); i < 32*32; i++ {
		mmu.Write(addr.TileMap0+i, 0x00)
		mmu.Write(addr.TileMap1+i, 0x01)
	}

	mmu.Write(addr.WX, 47) // window starts at screen X=40
	mmu.Write(addr.WY, 40)

	gpu.line = 40
	gpu.drawScanline()

	if got := gpu.framebuffer.GetPixel(30, 40); got != uint32(BlackColor) {
		t.Errorf("background pixel before the window = %#08X; want BlackColor", got)
	}
	if got := gpu.framebuffer.GetPixel(50, 40); got != uint32(WhiteColor) {
		t.Errorf("window pixel = %#08X; want WhiteColor (same BGP mapping as the background)", got)
	}
}

// TestPaletteChangeOnlyAffectsSubsequentScanlines confirms BGP is sampled
// once per scanline draw, not retroactively applied to already-rendered
// lines sitting in the framebuffer.
func TestPaletteChangeOnlyAffectsSubsequentScanlines(t *testing.T) {
	gpu, mmu := newBackgroundGPU()
	mmu.Write(addr.TileMap0, 0x00)
	for i := uint16(0); i < 32*32; i++ {
		mmu.Write(addr.TileMap0+i, 0x00)
	}
	writeTileRows(mmu, addr.TileData0, solidColorTile(2))

	mmu.Write(addr.BGP, 0xE4)
	gpu.line = 0
	gpu.drawScanline()
	if got := gpu.framebuffer.GetPixel(0, 0); got != uint32(DarkGreyColor) {
		t.Fatalf("line 0 with default palette = %#08X; want DarkGreyColor", got)
	}

	mmu.Write(addr.BGP, 0x1B)
	gpu.line = 1
	gpu.drawScanline()
	if got := gpu.framebuffer.GetPixel(0, 1); got != uint32(LightGreyColor) {
		t.Fatalf("line 1 with the new palette = %#08X; want LightGreyColor", got)
	}

	if got := gpu.framebuffer.GetPixel(0, 0); got != uint32(DarkGreyColor) {
		t.Errorf("line 0 after repainting line 1 = %#08X; want it unchanged at DarkGreyColor", got)
	}
}
