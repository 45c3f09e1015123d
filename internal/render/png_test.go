package render

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestEncodePNGDecodes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}

	decoded, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dx() != 20 || decoded.Bounds().Dy() != 10 {
		t.Fatalf("decoded bounds = %v", decoded.Bounds())
	}
}

func TestEncodePNGCarriesDensity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()
	idx := bytes.Index(data, []byte("pHYs"))
	if idx < 0 {
		t.Fatal("no pHYs chunk in output")
	}
	ppmX := binary.BigEndian.Uint32(data[idx+4 : idx+8])
	ppmY := binary.BigEndian.Uint32(data[idx+8 : idx+12])
	if ppmX != 11811 || ppmY != 11811 {
		t.Fatalf("density = %dx%d px/m, want 11811 (300 dpi)", ppmX, ppmY)
	}
	if unit := data[idx+12]; unit != 1 {
		t.Fatalf("unit = %d, want 1 (meters)", unit)
	}
	// The chunk must directly follow IHDR for readers that stop early.
	if idx != 33+4 {
		t.Fatalf("pHYs at offset %d, want right after IHDR", idx)
	}
}
