package pnm

import (
	"errors"
	"testing"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/davesmith10/pixelcodec/internal/pixel"
	"github.com/davesmith10/pixelcodec/internal/quantum"
)

func TestSniff(t *testing.T) {
	if !SniffPNM([]byte("P1\n")) || !SniffPNM([]byte("P6\n")) {
		t.Error("P1-P6 must sniff as pnm")
	}
	if SniffPNM([]byte("P7\n")) || !SniffPAM([]byte("P7\n")) {
		t.Error("P7 belongs to pam")
	}
	if !SniffPFM([]byte("PF\n")) || !SniffPFM([]byte("Pf\n")) || SniffPFM([]byte("P5\n")) {
		t.Error("PFM sniffing wrong")
	}
}

func TestDecodeP1(t *testing.T) {
	// PBM: 1 is black. Comments and run-together digits are legal.
	data := []byte("P1\n# a comment\n3 2\n0 1 1\n101\n")
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []quantum.Quantum{
		quantum.QuantumRange, 0, 0,
		0, quantum.QuantumRange, 0,
	}
	for i, w := range want {
		if got := res.Image.Row(i / 3)[i%3].Gray(); got != w {
			t.Errorf("pixel %d = %d, want %d", i, got, w)
		}
	}
}

func TestDecodeP2Maxval(t *testing.T) {
	data := []byte("P2\n3 1\n100\n0 50 100\n")
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	row := res.Image.Row(0)
	if row[0].Gray() != 0 || row[2].Gray() != quantum.QuantumRange {
		t.Errorf("endpoints wrong: %d, %d", row[0].Gray(), row[2].Gray())
	}
	if got := row[1].Gray(); got != quantum.ScaleToQuantum(50, 100) {
		t.Errorf("half scale = %d", got)
	}
}

func TestDecodeP3(t *testing.T) {
	data := []byte("P3\n1 1\n255\n255 128 0\n")
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	p := res.Image.Row(0)[0]
	if p.Red != 65535 || p.Green != 32896 || p.Blue != 0 {
		t.Errorf("got (%d,%d,%d)", p.Red, p.Green, p.Blue)
	}
}

func TestRoundTripP4(t *testing.T) {
	img, _ := pixel.New(10, 3)
	for y := 0; y < 3; y++ {
		for x := range img.Row(y) {
			g := quantum.Quantum(0)
			if (x+y)%3 == 0 {
				g = quantum.QuantumRange
			}
			img.Row(y)[x].SetGray(g)
		}
	}
	data, err := EncodePNM(img, codec.EncodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:2]) != "P4" {
		t.Fatalf("bilevel frame encoded as %q, want P4", data[:2])
	}
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 3; y++ {
		for x := range img.Row(y) {
			if res.Image.Row(y)[x].Gray() != img.Row(y)[x].Gray() {
				t.Fatalf("pixel (%d,%d) differs", x, y)
			}
		}
	}
}

func TestRoundTripP5Wide(t *testing.T) {
	img, _ := pixel.New(4, 2)
	vals := []quantum.Quantum{0, 1, 32768, 65535, 17, 40000, 12345, 65534}
	for i, v := range vals {
		img.Row(i / 4)[i%4].SetGray(v)
	}
	data, err := EncodePNM(img, codec.EncodeOptions{Depth: 16})
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:2]) != "P5" {
		t.Fatalf("gray frame encoded as %q, want P5", data[:2])
	}
	res, err := Decode(data, codec.DecodeOptions{Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vals {
		if got := res.Image.Row(i / 4)[i%4].Gray(); got != v {
			t.Errorf("pixel %d = %d, want %d", i, got, v)
		}
	}
}

func TestRoundTripP6(t *testing.T) {
	img, _ := pixel.New(2, 2)
	for i := 0; i < 4; i++ {
		img.Row(i / 2)[i%2] = quantum.Pixel{
			Red:   quantum.Quantum(i * 60 * 257),
			Green: quantum.Quantum((255 - i*60) * 257),
			Blue:  quantum.Quantum(i * 30 * 257),
			Alpha: quantum.QuantumRange,
		}
	}
	data, err := EncodePNM(img, codec.EncodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:2]) != "P6" {
		t.Fatalf("color frame encoded as %q, want P6", data[:2])
	}
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if res.Image.Row(i/2)[i%2] != img.Row(i/2)[i%2] {
			t.Errorf("pixel %d: %+v, want %+v", i, res.Image.Row(i/2)[i%2], img.Row(i/2)[i%2])
		}
	}
}

func TestRoundTripPAMAlpha(t *testing.T) {
	img, _ := pixel.New(2, 1)
	img.Matte = true
	img.Row(0)[0] = quantum.Pixel{Red: 65535, Green: 32896, Blue: 0, Alpha: 32896}
	img.Row(0)[1] = quantum.Pixel{Red: 257, Green: 514, Blue: 771, Alpha: quantum.QuantumRange}
	data, err := EncodePAM(img, codec.EncodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Image.Matte {
		t.Fatal("RGB_ALPHA tuple must set matte")
	}
	for x := range img.Row(0) {
		if res.Image.Row(0)[x] != img.Row(0)[x] {
			t.Errorf("pixel %d: %+v, want %+v", x, res.Image.Row(0)[x], img.Row(0)[x])
		}
	}
}

func TestRoundTripPAMCMYK(t *testing.T) {
	img, _ := pixel.New(1, 1)
	img.Colorspace = pixel.ColorspaceCMYK
	img.Row(0)[0] = quantum.Pixel{Red: 257, Green: 514, Blue: 771, Black: 1028, Alpha: quantum.QuantumRange}
	data, err := EncodePAM(img, codec.EncodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Image.Colorspace != pixel.ColorspaceCMYK {
		t.Fatalf("colorspace = %v, want CMYK", res.Image.Colorspace)
	}
	if res.Image.Row(0)[0] != img.Row(0)[0] {
		t.Errorf("pixel = %+v, want %+v", res.Image.Row(0)[0], img.Row(0)[0])
	}
}

func TestDecodePAMNoTupleType(t *testing.T) {
	data := []byte("P7\nWIDTH 1\nHEIGHT 1\nDEPTH 3\nMAXVAL 255\nENDHDR\n\xff\x00\x00")
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := res.Image.Row(0)[0].Red; got != quantum.QuantumRange {
		t.Errorf("red = %d", got)
	}
}

func TestDecodePFMLittleEndianBottomUp(t *testing.T) {
	// 1x2 gray, negative scale: little-endian samples, bottom row first.
	data := append([]byte("Pf\n1 2\n-1.0\n"),
		0x00, 0x00, 0x00, 0x00, // 0.0 -> bottom image row
		0x00, 0x00, 0x80, 0x3f, // 1.0 -> top image row
	)
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := res.Image.Row(0)[0].Gray(); got != quantum.QuantumRange {
		t.Errorf("top row = %d, want full scale", got)
	}
	if got := res.Image.Row(1)[0].Gray(); got != 0 {
		t.Errorf("bottom row = %d, want 0", got)
	}
}

func TestRoundTripPFM(t *testing.T) {
	img, _ := pixel.New(3, 2)
	for i := 0; i < 6; i++ {
		img.Row(i / 3)[i%3] = quantum.Pixel{
			Red:   quantum.Quantum(i * 13107),
			Green: quantum.Quantum(65535 - i*13107),
			Blue:  quantum.Quantum(i * 6553),
			Alpha: quantum.QuantumRange,
		}
	}
	data, err := EncodePFM(img, codec.EncodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:2]) != "PF" {
		t.Fatalf("color frame encoded as %q, want PF", data[:2])
	}
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		a, b := img.Row(i/3)[i%3], res.Image.Row(i/3)[i%3]
		dr := int(a.Red) - int(b.Red)
		if dr < -1 || dr > 1 {
			t.Errorf("pixel %d: red %d -> %d", i, a.Red, b.Red)
		}
	}
}

func TestDecodeTruncatedP5(t *testing.T) {
	data := []byte("P5\n4 4\n255\n")
	data = append(data, make([]byte, 10)...) // 10 of 16 sample bytes
	res, err := Decode(data, codec.DecodeOptions{})
	if err != nil {
		t.Fatalf("non-strict truncation must not fail: %v", err)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], quantum.ErrTruncatedRow) {
		t.Errorf("warnings = %v, want one ErrTruncatedRow", res.Warnings)
	}

	if _, err := Decode(data, codec.DecodeOptions{Strict: true}); !errors.Is(err, quantum.ErrTruncatedRow) {
		t.Errorf("strict decode = %v, want ErrTruncatedRow", err)
	}
}

func TestDecodeRejectsBadMaxval(t *testing.T) {
	for _, data := range []string{"P5\n1 1\n0\n\x00", "P5\n1 1\n70000\n\x00"} {
		if _, err := Decode([]byte(data), codec.DecodeOptions{}); err == nil {
			t.Errorf("maxval in %q must be rejected", data[:12])
		}
	}
}
