// Command nesview is a minimal ebiten-based viewer for the nes core: it
// loads an iNES ROM and runs it at 60 frames per second with keyboard
// input and audio playback.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/nesgo/core"
)

var (
	scale int
	mute  bool
	debug bool
)

func main() {
	defer glog.Flush()

	root := &cobra.Command{
		Use:   "nesview <rom.nes>",
		Short: "Play an iNES ROM through the nes core",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().IntVarP(&scale, "scale", "s", 3, "integer window scale factor")
	root.Flags().BoolVarP(&mute, "mute", "m", false, "disable audio playback")
	root.Flags().BoolVarP(&debug, "debug", "d", false, "enable verbose core logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if debug {
		// glog registers its verbosity as the standard-library -v flag,
		// which cobra does not parse, so set it directly.
		if err := flag.Set("v", "1"); err != nil {
			return fmt.Errorf("enabling debug logging: %w", err)
		}
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}

	sys, err := nes.Load(data)
	if err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}
	sys.Reset()

	g, err := newGame(sys, scale, mute)
	if err != nil {
		return fmt.Errorf("initializing viewer: %w", err)
	}

	ebiten.SetWindowTitle("nesview")
	ebiten.SetWindowSize(256*scale, 240*scale)
	return ebiten.RunGame(g)
}
