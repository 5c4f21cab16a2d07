package main

import (
	"fmt"
	"os"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/spf13/cobra"

	_ "github.com/davesmith10/pixelcodec/internal/pnm"
	_ "github.com/davesmith10/pixelcodec/internal/ps"
	_ "github.com/davesmith10/pixelcodec/internal/tiff"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an image to another format",
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringP("input", "i", "", "Input image file")
	convertCmd.Flags().StringP("output", "o", "", "Output image file (format from extension)")
	convertCmd.Flags().String("format", "", "Output format override (tiff, pnm, pam, pfm, ps)")
	convertCmd.Flags().Int("depth", 0, "Output bits per sample (0 = automatic)")
	convertCmd.Flags().String("compression", "", "TIFF compression (none, deflate, zstd)")
	convertCmd.Flags().Int("workers", 1, "Row workers for decode and encode")
	convertCmd.Flags().Bool("strict", false, "Fail on truncated input instead of warning")
	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	depth, _ := cmd.Flags().GetInt("depth")
	compression, _ := cmd.Flags().GetString("compression")
	workers, _ := cmd.Flags().GetInt("workers")
	strict, _ := cmd.Flags().GetBool("strict")

	if format == "" {
		f, err := codec.ForPath(outputPath)
		if err != nil {
			return err
		}
		format = f.Name
	}

	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	opts := codec.ConvertOptions{
		OutputFormat: format,
		Decode: codec.DecodeOptions{
			Workers: workers,
			Strict:  strict,
		},
		Encode: codec.EncodeOptions{
			Depth:       depth,
			Compression: compression,
			Workers:     workers,
		},
	}

	result, err := codec.Convert(inputData, opts)
	if err != nil {
		return fmt.Errorf("conversion: %w", err)
	}

	if err := os.WriteFile(outputPath, result.Data, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}
	fmt.Printf("Converted %dx%d %s → %s\n", result.Columns, result.Rows, result.SourceFormat, format)
	fmt.Printf("Input:  %s (%d bytes)\n", inputPath, len(inputData))
	fmt.Printf("Output: %s (%d bytes)\n", outputPath, len(result.Data))

	return nil
}
