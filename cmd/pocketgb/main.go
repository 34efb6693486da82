// Command pocketgb runs the DMG emulator core against a ROM file, either
// headless for a fixed number of frames or interactively in a terminal.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/pocketgb/pocketgb/gb"
)

func main() {
	app := cli.NewApp()
	app.Name = "pocketgb"
	app.Usage = "pocketgb [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to a 256 byte boot ROM image to overlay before execution",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a terminal interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("pocketgb exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := gb.NewWithROM(romPath)
	if err != nil {
		return err
	}

	if bootPath := c.String("boot-rom"); bootPath != "" {
		data, err := os.ReadFile(bootPath)
		if err != nil {
			return fmt.Errorf("reading boot ROM: %w", err)
		}
		if err := emu.LoadBootROM(data); err != nil {
			return err
		}
	}

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames with a positive value")
		}

		for i := 0; i < frames; i++ {
			emu.RunFrame()
			if (i+1)%60 == 0 {
				slog.Info("frame progress", "completed", i+1, "total", frames)
			}
		}

		return nil
	}

	return runInteractive(emu)
}
