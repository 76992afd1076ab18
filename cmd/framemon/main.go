package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/TheHostEagle/SO-FinalProyect/mem"
	"github.com/TheHostEagle/SO-FinalProyect/mem/pmm"
)

var (
	version = "dev"
)

func main() {
	var (
		frames      = flag.Int("frames", 128, "number of frames in the pool")
		base        = flag.Uint64("base", 0x8000_0000, "base address of the managed range")
		share       = flag.Int("share", 25, "share (copy-on-write) probability in percent")
		debug       = flag.Bool("debug", false, "log allocator pressure records to framemon.log")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("framemon %s\n", version)
		return
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *debug {
		f, err := os.OpenFile("framemon.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to open log file: %v\n", err)
		} else {
			defer f.Close()
			log = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
	}

	region, err := mem.NewRegion(mem.PhysAddr(*base), *frames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer region.Close()

	m := NewModel(pmm.New(region, pmm.WithLogger(log)), *share)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
