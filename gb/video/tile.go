package video

import "github.com/pocketgb/pocketgb/gb/bit"

// TileRow is one 8-pixel row of a tile, stored as the DMG's bit-plane
// format: two bytes where bit 7 is the leftmost pixel, bit 0 the
// rightmost, and each pixel's 2-bit color index is built from the same
// bit position in both bytes (Low contributes bit 0 of the index, High
// bit 1). A full tile is 8 of these, 16 bytes total in VRAM.
//
// Reference: https://gbdev.io/pandocs/Tile_Data.html
type TileRow struct {
	Low  byte
	High byte
}

// pixelAt reads the 2-bit color index at a given bit position, shared by
// GetPixel (bit 7-pixelX, unflipped) and GetPixelFlipped (bit pixelX).
func (t TileRow) pixelAt(bitIndex uint8) int {
	pixel := 0
	if bit.IsSet(bitIndex, t.Low) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, t.High) {
		pixel |= 2
	}
	return pixel
}

// GetPixel extracts the color index (0-3) at pixelX (0-7, 0 is leftmost).
func (t TileRow) GetPixel(pixelX int) int {
	return t.pixelAt(uint8(7 - pixelX))
}

// GetPixelFlipped is GetPixel under the sprite X-flip attribute, where bit
// 0 becomes the leftmost pixel instead of bit 7.
func (t TileRow) GetPixelFlipped(pixelX int) int {
	return t.pixelAt(uint8(pixelX))
}

// Tile is a complete 8x8 DMG tile: 8 rows, 16 bytes in VRAM.
type Tile struct {
	Index int
	Rows  [8]TileRow
}

// GetPixel returns the color index (0-3) at (x, y), or 0 if out of bounds.
func (t *Tile) GetPixel(x, y int) int {
	if y < 0 || y >= 8 || x < 0 || x >= 8 {
		return 0
	}
	return t.Rows[y].GetPixel(x)
}

// Pixels renders the tile's raw color indices as an 8x8 grid, useful for
// debugger snapshots that want the tile independent of palette mapping.
func (t *Tile) Pixels() [8][8]GBColor {
	var pixels [8][8]GBColor
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			pixels[y][x] = GBColor(t.Rows[y].GetPixel(x))
		}
	}
	return pixels
}

// MemoryReader is the read-only bus slice tile fetching needs.
type MemoryReader interface {
	Read(addr uint16) byte
}

// FetchTile reads a 16-byte tile starting at baseAddr. Index is left unset;
// use FetchTileWithIndex to record it.
func FetchTile(memory MemoryReader, baseAddr uint16) Tile {
	var tile Tile
	for row := 0; row < 8; row++ {
		addr := baseAddr + uint16(row*2)
		tile.Rows[row] = TileRow{
			Low:  memory.Read(addr),
			High: memory.Read(addr + 1),
		}
	}
	return tile
}

// FetchTileWithIndex is FetchTile plus recording the tile's VRAM index
// (0-383), used when a debugger snapshot needs to report which tile a
// pixel came from.
func FetchTileWithIndex(memory MemoryReader, baseAddr uint16, index int) Tile {
	tile := FetchTile(memory, baseAddr)
	tile.Index = index
	return tile
}
