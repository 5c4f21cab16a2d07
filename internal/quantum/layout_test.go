package quantum

import (
	"errors"
	"testing"
)

func TestLayoutBytesPerRow(t *testing.T) {
	tests := []struct {
		qt       Type
		depth    int
		columns  int
		pad      int
		want     int
		channels int
	}{
		{TypeGray, 1, 8, 0, 1, 1},
		{TypeGray, 1, 9, 0, 2, 1},
		{TypeGray, 8, 10, 0, 10, 1},
		{TypeGray, 16, 10, 0, 20, 1},
		{TypeRGB, 8, 4, 0, 12, 3},
		{TypeRGBA, 16, 2, 0, 16, 4},
		{TypeCMYK, 8, 3, 0, 12, 4},
		{TypeCMYKA, 8, 1, 0, 5, 5},
		{TypeGrayAlpha, 8, 2, 0, 4, 2},
		{TypeIndex, 4, 5, 0, 3, 1},
		{TypeIndexAlpha, 8, 2, 0, 4, 2},
		{TypeRGB, 8, 2, 1, 8, 3}, // one pad byte per pixel
		{TypeAlpha, 8, 7, 0, 7, 1},
		{TypeRed, 12, 2, 0, 3, 1},
	}
	for _, tt := range tests {
		info, err := NewInfo(tt.depth)
		if err != nil {
			t.Fatalf("NewInfo(%d): %v", tt.depth, err)
		}
		info.Pad = tt.pad
		layout, err := info.Layout(tt.columns, tt.qt)
		if err != nil {
			t.Fatalf("%v depth=%d: %v", tt.qt, tt.depth, err)
		}
		if layout.BytesPerRow != tt.want {
			t.Errorf("%v depth=%d cols=%d pad=%d: BytesPerRow=%d, want %d",
				tt.qt, tt.depth, tt.columns, tt.pad, layout.BytesPerRow, tt.want)
		}
		if layout.ChannelsPerPixel != tt.channels {
			t.Errorf("%v: ChannelsPerPixel=%d, want %d",
				tt.qt, layout.ChannelsPerPixel, tt.channels)
		}
	}
}

func TestLayoutChannelOrder(t *testing.T) {
	info, _ := NewInfo(8)
	layout, err := info.Layout(1, TypeCMYKA)
	if err != nil {
		t.Fatal(err)
	}
	want := []Channel{ChannelCyan, ChannelMagenta, ChannelYellow, ChannelBlack, ChannelAlpha}
	for i, ch := range want {
		if layout.Order[i] != ch {
			t.Fatalf("CMYKA order[%d] = %v, want %v", i, layout.Order[i], ch)
		}
	}
}

func TestLayoutRejectsBadConfig(t *testing.T) {
	if _, err := NewInfo(0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("depth 0 = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewInfo(33); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("depth 33 = %v, want ErrInvalidArgument", err)
	}

	info, _ := NewInfo(8)
	info.MaxValue = 0
	if _, err := info.Layout(1, TypeGray); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero sample maximum = %v, want ErrInvalidArgument", err)
	}

	info, _ = NewInfo(8)
	if _, err := info.Layout(0, TypeGray); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero columns = %v, want ErrInvalidArgument", err)
	}
	if _, err := info.Layout(1, TypeUndefined); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("undefined type = %v, want ErrInvalidArgument", err)
	}

	info, _ = NewInfo(16)
	info.Format = FormatFloat
	if _, err := info.Layout(1, TypeGray); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("float at depth 16 = %v, want ErrInvalidArgument", err)
	}
}
