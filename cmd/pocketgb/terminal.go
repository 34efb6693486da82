package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pocketgb/pocketgb/gb"
	"github.com/pocketgb/pocketgb/gb/memory"
	"github.com/pocketgb/pocketgb/gb/video"
)

const frameTime = time.Second / 60

// shades maps the 4 DMG colors to terminal glyphs, darkest first so index
// order matches increasing pixel value only incidentally, the mapping below
// is keyed directly off GBColor instead.
var shades = [4]rune{'#', '%', '.', ' '}

func shadeFor(c video.GBColor) rune {
	switch c {
	case video.BlackColor:
		return shades[0]
	case video.DarkGreyColor:
		return shades[1]
	case video.LightGreyColor:
		return shades[2]
	default:
		return shades[3]
	}
}

// keyMapping translates tcell key events into joypad buttons. It contains no
// emulation logic of its own: it only calls Emulator.RunFrame, GetCurrentFrame
// and HandleKeyPress/Release.
var keyMapping = map[tcell.Key]memory.JoypadKey{
	tcell.KeyUp:    memory.JoypadUp,
	tcell.KeyDown:  memory.JoypadDown,
	tcell.KeyLeft:  memory.JoypadLeft,
	tcell.KeyRight: memory.JoypadRight,
	tcell.KeyEnter: memory.JoypadStart,
}

var runeMapping = map[rune]memory.JoypadKey{
	'z': memory.JoypadA,
	'x': memory.JoypadB,
	's': memory.JoypadSelect,
	'a': memory.JoypadStart,
}

func runInteractive(emu *gb.Emulator) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	pressed := make(map[memory.JoypadKey]bool)
	events := make(chan tcell.Event, 16)
	go screen.ChannelEvents(events, nil)

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
					return nil
				}
				key, ok := keyMapping[ev.Key()]
				if !ok {
					key, ok = runeMapping[ev.Rune()]
				}
				if ok && !pressed[key] {
					pressed[key] = true
					emu.HandleKeyPress(key)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			emu.RunFrame()
			render(screen, emu.GetCurrentFrame())
			releaseUnseenKeys(emu, pressed)
		}
	}
}

// releaseUnseenKeys clears every pressed button each tick, since tcell only
// delivers key-down events: a button counts as held only for the tick it
// arrived in, which is coarse but sufficient for a debugging frontend.
func releaseUnseenKeys(emu *gb.Emulator, pressed map[memory.JoypadKey]bool) {
	for key := range pressed {
		emu.HandleKeyRelease(key)
		delete(pressed, key)
	}
}

func render(screen tcell.Screen, fb *video.FrameBuffer) {
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)

	for y := uint(0); y < video.FramebufferHeight; y += 2 {
		for x := uint(0); x < video.FramebufferWidth; x++ {
			color := video.GBColor(fb.GetPixel(x, y))
			screen.SetContent(int(x), int(y/2), shadeFor(color), nil, style)
		}
	}

	screen.Show()
}
