package video

import (
	"testing"

	"github.com/pocketgb/pocketgb/gb/addr"
	"github.com/pocketgb/pocketgb/gb/memory"
)

// writeSpriteWithTile places sprite oamIndex in OAM at the given screen
// position with the given attribute flags, and writes its 8x8 tile data
// (assigned tile number oamIndex+1, so tile 0 never collides with a sprite).
func writeSpriteWithTile(mmu *memory.MMU, oamIndex, x, y int, attrs byte, tile [16]byte) {
	oamAddr := addr.OAMStart + uint16(oamIndex*4)
	mmu.Write(oamAddr, byte(y+16))
	mmu.Write(oamAddr+1, byte(x+8))
	mmu.Write(oamAddr+2, byte(oamIndex+1))
	mmu.Write(oamAddr+3, attrs)

	tileAddr := addr.TileData0 + uint16(oamIndex+1)*16
	for i, b := range tile {
		mmu.Write(tileAddr+uint16(i), b)
	}
}

var (
	blackTile    = [16]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	darkGreyTile = [16]byte{0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF}
)

func newSpriteGPU() (*GPU, *memory.MMU) {
	mmu := memory.New()
	gpu := NewGpu(mmu)
	mmu.Write(addr.LCDC, 0x93) // LCD, BG, sprites, unsigned tiles
	mmu.Write(addr.BGP, 0xE4)
	mmu.Write(addr.OBP0, 0xE4)
	return gpu, mmu
}

// TestSpriteToSpritePriorityFollowsXThenOAMIndex draws overlapping sprites
// and checks each overlapped pixel shows the sprite the hardware's
// priority rule (lower X, then lower OAM index) picks.
func TestSpriteToSpritePriorityFollowsXThenOAMIndex(t *testing.T) {
	type spriteDef struct {
		oamIndex int
		x        int
		tile     [16]byte
		color    GBColor
	}

	cases := []struct {
		desc    string
		sprites []spriteDef
		// owner[i] is the OAM index owning screen column i (10..27), or -1 for background.
		owners [18]int
	}{
		{
			desc: "a lower X coordinate wins the overlap",
			sprites: []spriteDef{
				{0, 20, blackTile, BlackColor},
				{1, 10, darkGreyTile, DarkGreyColor},
			},
			owners: [18]int{1, 1, 1, 1, 1, 1, 1, 1, -1, -1, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			desc: "equal X falls back to lower OAM index",
			sprites: []spriteDef{
				{0, 20, blackTile, BlackColor},
				{1, 20, darkGreyTile, DarkGreyColor},
			},
			owners: [18]int{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, 0, 0, 0, 0, 0, 0, 0, 0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			gpu, mmu := newSpriteGPU()
			colorOf := map[int]GBColor{}
			for _, s := range tc.sprites {
				writeSpriteWithTile(mmu, s.oamIndex, s.x, 50, 0x00, s.tile)
				colorOf[s.oamIndex] = s.color
			}

			gpu.line = 50
			gpu.drawScanline()

			fb := gpu.GetFrameBuffer()
			for i, owner := range tc.owners {
				x := uint(10 + i)
				got := fb.GetPixel(x, 50)
				want := uint32(WhiteColor)
				if owner != -1 {
					want = uint32(colorOf[owner])
				}
				if got != want {
					t.Errorf("pixel %d owner = %#08X; want %#08X (sprite %d or background)", x, got, want, owner)
				}
			}
		})
	}
}

func TestSpriteScanlineLimitIsTenInOAMOrder(t *testing.T) {
	gpu, mmu := newSpriteGPU()

	const spriteCount = 12
	for i := 0; i < spriteCount; i++ {
		writeSpriteWithTile(mmu, i, 8+i*8, 50, 0x00, blackTile)
	}

	gpu.line = 50
	gpu.drawScanline()

	fb := gpu.GetFrameBuffer()
	bg := fb.GetPixel(0, 50)

	for i := 0; i < 10; i++ {
		if got := fb.GetPixel(uint(8+i*8), 50); got == bg {
			t.Errorf("sprite %d should be visible (within the 10-sprite limit)", i)
		}
	}
	for i := 10; i < spriteCount; i++ {
		if got := fb.GetPixel(uint(8+i*8), 50); got != bg {
			t.Errorf("sprite %d should not be drawn; it exceeds the 10-sprite-per-scanline limit", i)
		}
	}
}

// TestOffScreenSpritesStillCountTowardScanlineLimit checks that sprites
// scrolled fully off the left edge are still scanned and consume a slot in
// the hardware's 10-per-scanline budget, even though nothing of theirs is
// drawn.
func TestOffScreenSpritesStillCountTowardScanlineLimit(t *testing.T) {
	gpu, mmu := newSpriteGPU()

	for i := 0; i < 8; i++ {
		writeSpriteWithTile(mmu, i, -8, 50, 0x00, blackTile) // fully off the left edge
	}
	for i := 8; i < 12; i++ {
		writeSpriteWithTile(mmu, i, 20+(i-8)*10, 50, 0x00, blackTile)
	}

	gpu.line = 50
	gpu.drawScanline()

	fb := gpu.GetFrameBuffer()
	if got := fb.GetPixel(20, 50); got != uint32(BlackColor) {
		t.Errorf("sprite 8 should be visible; it's within the first 10 scanned sprites")
	}
	if got := fb.GetPixel(30, 50); got != uint32(BlackColor) {
		t.Errorf("sprite 9 should be visible; it's within the first 10 scanned sprites")
	}
	if got := fb.GetPixel(40, 50); got != uint32(WhiteColor) {
		t.Errorf("sprite 10 should not be drawn; the 8 off-screen sprites already used up the limit")
	}
	if got := fb.GetPixel(50, 50); got != uint32(WhiteColor) {
		t.Errorf("sprite 11 should not be drawn; the 8 off-screen sprites already used up the limit")
	}
}

// TestSpriteBehindBackgroundPriorityFlag exercises OAM attribute bit 7: a
// sprite marked BehindBG is occluded by any non-zero background color, but
// still shows through background color 0 (the "transparent" background
// shade).
func TestSpriteBehindBackgroundPriorityFlag(t *testing.T) {
	palette := [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

	cases := []struct {
		desc        string
		bgColor     byte
		behindBG    bool
		spriteColor byte
		drawn       bool
	}{
		{"sprite above BG draws over every BG color", 0, false, 1, true},
		{"sprite above BG draws over color 3", 3, false, 1, true},
		{"behind-BG sprite shows through BG color 0", 0, true, 1, true},
		{"behind-BG sprite is hidden by BG color 1", 1, true, 1, false},
		{"behind-BG sprite is hidden by BG color 3", 3, true, 1, false},
		{"a fully transparent sprite pixel never draws", 0, false, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			gpu, mmu := newSpriteGPU()

			mmu.Write(addr.TileMap0, 0x00)
			writeTileRows(mmu, addr.TileData0, solidColorTile(int(tc.bgColor)))

			attrs := byte(0)
			if tc.behindBG {
				attrs |= 0x80
			}
			writeSpriteWithTile(mmu, 0, 50, 50, attrs, solidColorTile16(int(tc.spriteColor)))

			gpu.line = 50
			gpu.drawScanline()

			got := gpu.GetFrameBuffer().GetPixel(50, 50)
			want := uint32(palette[tc.spriteColor])
			if !tc.drawn {
				want = uint32(palette[tc.bgColor])
			}
			if got != want {
				t.Errorf("pixel = %#08X; want %#08X (drawn=%v)", got, want, tc.drawn)
			}
		})
	}
}

// solidColorTile16 is solidColorTile's 16-byte (8-row) form for sprite tile
// data, which writeSpriteWithTile needs as a flat array rather than the
// [8][2]byte shape writeTileRows takes.
func solidColorTile16(colorIndex int) [16]byte {
	rows := solidColorTile(colorIndex)
	var flat [16]byte
	for i, plane := range rows {
		flat[i*2] = plane[0]
		flat[i*2+1] = plane[1]
	}
	return flat
}
