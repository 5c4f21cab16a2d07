package main

import (
	"fmt"
	"math"
	"os"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/davesmith10/pixelcodec/internal/pixel"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file1] [file2]",
	Short: "Measure the distortion between two images",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func loadImage(path string) (*pixel.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	_, img, _, err := codec.Identify(data, codec.DecodeOptions{})
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return img, nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := loadImage(args[0])
	if err != nil {
		return err
	}
	b, err := loadImage(args[1])
	if err != nil {
		return err
	}

	d, err := pixel.Compare(a, b)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	fmt.Printf("MAE:  %.6f\n", d.MeanAbsolute)
	fmt.Printf("MSE:  %.6f\n", d.MeanSquared)
	fmt.Printf("RMSE: %.6f\n", d.RootMeanSquared)
	if math.IsInf(d.PeakSignalToNoise, 1) {
		fmt.Println("PSNR: inf (identical)")
	} else {
		fmt.Printf("PSNR: %.2f dB\n", d.PeakSignalToNoise)
	}

	return nil
}
