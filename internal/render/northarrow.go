package render

import (
	"image"

	"github.com/fogleman/gg"
)

// drawNorthArrow paints a north indicator in the top-left corner of the main
// panel: a two-tone arrowhead with an "N" above it. The arrow is rendered on
// its own raster, pushed through the theme's contrast/saturation pass and
// then composited, so it stays crisp against busy basemaps.
func (r *Renderer) drawNorthArrow(dc *gg.Context, w, h int) {
	size := int(float64(w) * 0.09)
	if size < 24 {
		size = 24
	}
	arrow := r.renderArrow(size)

	var img image.Image = arrow
	if r.theme.ArrowContrast != 1 {
		img = AdjustContrast(img, r.theme.ArrowContrast)
	}
	if r.theme.ArrowSaturation != 1 {
		img = AdjustSaturation(img, r.theme.ArrowSaturation)
	}

	margin := size / 3
	dc.DrawImage(img, margin, margin)
}

func (r *Renderer) renderArrow(size int) *image.RGBA {
	ac := gg.NewContext(size, size)

	s := float64(size)
	cx := s / 2
	tipY := s * 0.28
	baseY := s * 0.92
	notchY := s * 0.76
	halfW := s * 0.24

	// Right half, filled dark.
	ac.MoveTo(cx, tipY)
	ac.LineTo(cx+halfW, baseY)
	ac.LineTo(cx, notchY)
	ac.ClosePath()
	ac.SetHexColor(r.theme.TextPrimary)
	ac.Fill()

	// Left half, filled light with the same outline.
	ac.MoveTo(cx, tipY)
	ac.LineTo(cx-halfW, baseY)
	ac.LineTo(cx, notchY)
	ac.ClosePath()
	ac.SetHexColor(r.theme.Surface)
	ac.FillPreserve()
	ac.SetHexColor(r.theme.TextPrimary)
	ac.SetLineWidth(s * 0.02)
	ac.Stroke()

	ac.SetFontFace(r.fonts.BoldFace(s * 0.24))
	ac.SetHexColor(r.theme.TextPrimary)
	ac.DrawStringAnchored("N", cx, s*0.13, 0.5, 0.5)

	return ac.Image().(*image.RGBA)
}
