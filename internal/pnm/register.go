package pnm

import "github.com/davesmith10/pixelcodec/internal/codec"

func init() {
	codec.Register(&codec.Format{
		Name:       "pnm",
		Extensions: []string{"pnm", "pbm", "pgm", "ppm"},
		Sniff:      SniffPNM,
		Decode:     Decode,
		Encode:     EncodePNM,
	})
	codec.Register(&codec.Format{
		Name:       "pam",
		Extensions: []string{"pam"},
		Sniff:      SniffPAM,
		Decode:     Decode,
		Encode:     EncodePAM,
	})
	codec.Register(&codec.Format{
		Name:       "pfm",
		Extensions: []string{"pfm"},
		Sniff:      SniffPFM,
		Decode:     Decode,
		Encode:     EncodePFM,
	})
}
