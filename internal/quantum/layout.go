package quantum

// Channel names one slot of the canonical pixel record in an external
// channel order.
type Channel int

const (
	ChannelRed Channel = iota
	ChannelGreen
	ChannelBlue
	ChannelAlpha
	ChannelBlack
	ChannelIndex
	ChannelGray
)

// CMYK channel orders reuse the red, green and blue slots, matching the
// canonical pixel storage.
const (
	ChannelCyan    = ChannelRed
	ChannelMagenta = ChannelGreen
	ChannelYellow  = ChannelBlue
)

// Layout describes the resolved sample geometry of one scanline.
type Layout struct {
	// BytesPerRow is the exact external size of one row, including
	// per-pixel padding.
	BytesPerRow int

	// ChannelsPerPixel is the number of declared samples per pixel,
	// excluding padding.
	ChannelsPerPixel int

	// Order is the fixed channel order for the quantum type.
	Order []Channel
}

var channelOrders = map[Type][]Channel{
	TypeGray:       {ChannelGray},
	TypeGrayAlpha:  {ChannelGray, ChannelAlpha},
	TypeRGB:        {ChannelRed, ChannelGreen, ChannelBlue},
	TypeRGBA:       {ChannelRed, ChannelGreen, ChannelBlue, ChannelAlpha},
	TypeCMYK:       {ChannelCyan, ChannelMagenta, ChannelYellow, ChannelBlack},
	TypeCMYKA:      {ChannelCyan, ChannelMagenta, ChannelYellow, ChannelBlack, ChannelAlpha},
	TypeIndex:      {ChannelIndex},
	TypeIndexAlpha: {ChannelIndex, ChannelAlpha},
	TypeAlpha:      {ChannelAlpha},
	TypeRed:        {ChannelRed},
	TypeGreen:      {ChannelGreen},
	TypeBlue:       {ChannelBlue},
	TypeBlack:      {ChannelBlack},
}

// Layout resolves the per-row geometry for columns pixels of the given
// quantum type under this configuration.
func (info *Info) Layout(columns int, qt Type) (Layout, error) {
	if err := info.validate(); err != nil {
		return Layout{}, err
	}
	if columns < 1 {
		return Layout{}, invalidArgumentf("column count %d out of range", columns)
	}
	order, ok := channelOrders[qt]
	if !ok {
		return Layout{}, invalidArgumentf("unsupported quantum type %v", qt)
	}
	channels := len(order)
	bits := columns * channels * info.Depth
	return Layout{
		BytesPerRow:      (bits+7)/8 + columns*info.Pad,
		ChannelsPerPixel: channels,
		Order:            order,
	}, nil
}
