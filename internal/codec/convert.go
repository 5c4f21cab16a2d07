package codec

import (
	"fmt"

	"github.com/davesmith10/pixelcodec/internal/pixel"
)

// ConvertOptions controls the full decode → encode pipeline.
type ConvertOptions struct {
	OutputFormat string // registered format name, e.g. "tiff", "pnm", "ps"
	Decode       DecodeOptions
	Encode       EncodeOptions
}

// ConvertResult holds the output of a pipeline run.
type ConvertResult struct {
	Data         []byte
	SourceFormat string
	Columns      int
	Rows         int
	Warnings     []error
}

// Convert executes the pipeline: sniff → decode → encode.
func Convert(data []byte, opts ConvertOptions) (*ConvertResult, error) {
	src, err := Detect(data)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	decoded, err := src.Decode(data, opts.Decode)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.Name, err)
	}

	dst, err := ByName(opts.OutputFormat)
	if err != nil {
		return nil, err
	}
	if dst.Encode == nil {
		return nil, fmt.Errorf("format %s is read-only", dst.Name)
	}

	encoded, err := dst.Encode(decoded.Image, opts.Encode)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", dst.Name, err)
	}

	return &ConvertResult{
		Data:         encoded,
		SourceFormat: src.Name,
		Columns:      decoded.Image.Columns,
		Rows:         decoded.Image.Rows,
		Warnings:     decoded.Warnings,
	}, nil
}

// Identify decodes just enough to describe the image.
func Identify(data []byte, opts DecodeOptions) (*Format, *pixel.Image, []error, error) {
	src, err := Detect(data)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("detect: %w", err)
	}
	decoded, err := src.Decode(data, opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode %s: %w", src.Name, err)
	}
	return src, decoded.Image, decoded.Warnings, nil
}
