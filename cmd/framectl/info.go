package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheHostEagle/SO-FinalProyect/mem"
	"github.com/TheHostEagle/SO-FinalProyect/mem/pmm"
)

var (
	infoFrames int
	infoBase   string
)

func init() {
	cmd := newInfoCmd()
	cmd.Flags().IntVar(&infoFrames, "frames", 1024, "Number of frames in the pool")
	cmd.Flags().StringVar(&infoBase, "base", "0x80000000", "Base address of the managed range")
	rootCmd.AddCommand(cmd)
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show geometry of a frame pool",
		Long: `The info command builds a frame pool with the given geometry and reports
its managed range, frame count, and initial free-frame counter.

Example:
  framectl info --frames 4096
  framectl info --frames 256 --base 0x10000000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
}

// PoolInfo describes the geometry of a frame pool.
type PoolInfo struct {
	FrameSize  int    `json:"frameSize"`
	Frames     int    `json:"frames"`
	RangeStart string `json:"rangeStart"`
	RangeTop   string `json:"rangeTop"`
	TotalBytes int    `json:"totalBytes"`
	FreeFrames int    `json:"freeFrames"`
}

func runInfo() error {
	base, err := parseAddr(infoBase)
	if err != nil {
		return fmt.Errorf("invalid base address %q: %w", infoBase, err)
	}

	info, err := poolInfo(mem.PhysAddr(base), infoFrames)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("Frame pool geometry\n")
	printInfo("  frame size:  %d bytes\n", info.FrameSize)
	printInfo("  frames:      %d\n", info.Frames)
	printInfo("  range:       [%s, %s)\n", info.RangeStart, info.RangeTop)
	printInfo("  total:       %d bytes\n", info.TotalBytes)
	printInfo("  free frames: %d\n", info.FreeFrames)
	return nil
}

func poolInfo(base mem.PhysAddr, frames int) (PoolInfo, error) {
	region, err := mem.NewRegion(base, frames)
	if err != nil {
		return PoolInfo{}, err
	}
	defer region.Close()

	alloc := pmm.New(region)
	return PoolInfo{
		FrameSize:  mem.FrameSize,
		Frames:     region.Frames(),
		RangeStart: fmt.Sprintf("%#x", uint64(region.Start())),
		RangeTop:   fmt.Sprintf("%#x", uint64(region.Top())),
		TotalBytes: region.Frames() * mem.FrameSize,
		FreeFrames: alloc.FreeFrames(),
	}, nil
}
