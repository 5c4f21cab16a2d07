package tiff

import "github.com/davesmith10/pixelcodec/internal/codec"

func init() {
	codec.Register(&codec.Format{
		Name:       "tiff",
		Extensions: []string{"tif", "tiff"},
		Sniff:      Sniff,
		Decode:     Decode,
		Encode:     Encode,
	})
}
