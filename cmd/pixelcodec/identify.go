package main

import (
	"fmt"
	"os"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Inspect an image's format and geometry",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	format, img, warnings, err := codec.Identify(data, codec.DecodeOptions{})
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Format:     %s\n", format.Name)
	fmt.Printf("Dimensions: %d x %d\n", img.Columns, img.Rows)
	fmt.Printf("Colorspace: %s\n", img.Colorspace)
	fmt.Printf("Alpha:      %v\n", img.Matte)
	if img.Palette != nil {
		fmt.Printf("Palette:    %d entries\n", len(img.Palette))
	}
	fmt.Printf("File size:  %d bytes\n", len(data))
	for _, w := range warnings {
		fmt.Printf("Warning:    %v\n", w)
	}

	return nil
}
