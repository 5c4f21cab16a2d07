package tiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/tiff/lzw"
)

// decompress expands one strip or tile into its raw bytes.
func decompress(chunk []byte, compression uint64) ([]byte, error) {
	switch compression {
	case compressionNone:
		return chunk, nil
	case compressionLZW:
		r := lzw.NewReader(bytes.NewReader(chunk), lzw.MSB, 8)
		defer r.Close()
		raw, err := io.ReadAll(r)
		if err != nil {
			return raw, fmt.Errorf("lzw: %w", err)
		}
		return raw, nil
	case compressionDeflate, compressionOldDeflate:
		r, err := zlib.NewReader(bytes.NewReader(chunk))
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		defer r.Close()
		raw, err := io.ReadAll(r)
		if err != nil {
			return raw, fmt.Errorf("deflate: %w", err)
		}
		return raw, nil
	case compressionZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		raw, err := dec.DecodeAll(chunk, nil)
		if err != nil {
			return raw, fmt.Errorf("zstd: %w", err)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("unsupported compression scheme %d", compression)
}

// compress packs one strip's raw bytes for writing.
func compress(raw []byte, compression uint64) ([]byte, error) {
	switch compression {
	case compressionNone:
		return raw, nil
	case compressionDeflate:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		return buf.Bytes(), nil
	case compressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		out := enc.EncodeAll(raw, nil)
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported compression scheme %d", compression)
}

// compressionByName maps an EncodeOptions scheme name to its tag value.
func compressionByName(name string) (uint64, error) {
	switch name {
	case "", "none":
		return compressionNone, nil
	case "deflate", "zip":
		return compressionDeflate, nil
	case "zstd":
		return compressionZstd, nil
	case "lzw":
		return 0, fmt.Errorf("lzw is read-only; write none, deflate or zstd")
	}
	return 0, fmt.Errorf("unknown compression %q", name)
}
