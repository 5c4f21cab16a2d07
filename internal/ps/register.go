package ps

import "github.com/davesmith10/pixelcodec/internal/codec"

func init() {
	codec.Register(&codec.Format{
		Name:       "ps",
		Extensions: []string{"ps", "eps"},
		Encode:     Encode,
	})
}
