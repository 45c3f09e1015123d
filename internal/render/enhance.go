package render

import (
	"image"
	"image/color"
)

// AdjustContrast scales pixel channels away from mid-gray by factor. A
// factor of 1 is the identity.
func AdjustContrast(img image.Image, factor float64) *image.RGBA {
	return mapPixels(img, func(r, g, b float64) (float64, float64, float64) {
		return (r-128)*factor + 128, (g-128)*factor + 128, (b-128)*factor + 128
	})
}

// AdjustSaturation moves pixel channels toward (factor < 1) or away from
// (factor > 1) their luminance-weighted gray.
func AdjustSaturation(img image.Image, factor float64) *image.RGBA {
	return mapPixels(img, func(r, g, b float64) (float64, float64, float64) {
		gray := 0.299*r + 0.587*g + 0.114*b
		return gray + (r-gray)*factor, gray + (g-gray)*factor, gray + (b-gray)*factor
	})
}

func mapPixels(img image.Image, fn func(r, g, b float64) (float64, float64, float64)) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			nr, ng, nb := fn(float64(r>>8), float64(g>>8), float64(b>>8))
			out.SetRGBA(x, y, color.RGBA{
				R: clampByte(nr),
				G: clampByte(ng),
				B: clampByte(nb),
				A: uint8(a >> 8),
			})
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
