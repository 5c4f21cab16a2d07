package main

import (
	"fmt"
	"os"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/davesmith10/pixelcodec/internal/pixel"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Print per-channel image statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	_, img, _, err := codec.Identify(data, codec.DecodeOptions{})
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	stats := img.Statistics()
	printChannel := func(name string, c pixel.ChannelStats) {
		fmt.Printf("%-7s min=%-6d max=%-6d mean=%-10.2f stddev=%.2f\n",
			name+":", c.Min, c.Max, c.Mean, c.StdDev)
	}
	if img.Colorspace == pixel.ColorspaceCMYK {
		printChannel("Cyan", stats.Red)
		printChannel("Magenta", stats.Green)
		printChannel("Yellow", stats.Blue)
		printChannel("Black", stats.Black)
	} else if img.Colorspace == pixel.ColorspaceGray {
		printChannel("Gray", stats.Red)
	} else {
		printChannel("Red", stats.Red)
		printChannel("Green", stats.Green)
		printChannel("Blue", stats.Blue)
	}
	if img.Matte {
		printChannel("Alpha", stats.Alpha)
	}
	fmt.Printf("Entropy: %.4f bits/pixel\n", img.Entropy())

	return nil
}
