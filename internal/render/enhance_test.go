package render

import (
	"image"
	"image/color"
	"testing"
)

func solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestAdjustContrastIdentity(t *testing.T) {
	in := solid(color.RGBA{R: 180, G: 90, B: 40, A: 255})
	out := AdjustContrast(in, 1)
	if got := out.RGBAAt(0, 0); got != in.RGBAAt(0, 0) {
		t.Fatalf("identity changed pixel: %v", got)
	}
}

func TestAdjustContrastSpreads(t *testing.T) {
	out := AdjustContrast(solid(color.RGBA{R: 200, G: 60, B: 128, A: 255}), 1.5)
	px := out.RGBAAt(0, 0)
	if px.R <= 200 {
		t.Errorf("bright channel should brighten, got %d", px.R)
	}
	if px.G >= 60 {
		t.Errorf("dark channel should darken, got %d", px.G)
	}
	if px.B != 128 {
		t.Errorf("mid-gray channel should hold, got %d", px.B)
	}
}

func TestAdjustContrastClamps(t *testing.T) {
	out := AdjustContrast(solid(color.RGBA{R: 250, G: 5, B: 0, A: 255}), 3)
	px := out.RGBAAt(0, 0)
	if px.R != 255 || px.G != 0 {
		t.Fatalf("expected clamped channels, got %v", px)
	}
}

func TestAdjustSaturationToGray(t *testing.T) {
	out := AdjustSaturation(solid(color.RGBA{R: 200, G: 50, B: 100, A: 255}), 0)
	px := out.RGBAAt(0, 0)
	if px.R != px.G || px.G != px.B {
		t.Fatalf("zero saturation should be gray, got %v", px)
	}
}

func TestAdjustContrastKeepsTransparentPixels(t *testing.T) {
	out := AdjustContrast(solid(color.RGBA{}), 1.5)
	if got := out.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Fatalf("transparent pixel gained color: %v", got)
	}
}

func TestAdjustSaturationPreservesAlpha(t *testing.T) {
	in := solid(color.RGBA{R: 200, G: 50, B: 100, A: 128})
	out := AdjustSaturation(in, 1.3)
	if out.RGBAAt(0, 0).A != 128 {
		t.Fatalf("alpha changed: %v", out.RGBAAt(0, 0))
	}
}
