package render

import (
	"image"
	"image/draw"
	"strings"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

const subtitleMaxLen = 37

// Layout describes the pixel placement the compositor computed. Exposed so
// tests can assert the geometry without decoding the output image.
type Layout struct {
	Width, Height   int
	TitleBandHeight int
	AuxSquare       int
	InfoHeight      int
}

// ComputeLayout derives the composite geometry from the main panel size.
// The inset edge is the smaller of 42% of the main width and half of 65% of
// the main height, so the two insets stay square; the lateral column is
// exactly one inset wide and the info block takes the remaining height.
func (r *Renderer) ComputeLayout(mainW, mainH int) Layout {
	lateral := int(float64(mainW) * 0.42)
	auxTarget := int(float64(mainH) * 0.65)
	auxSquare := lateral
	if auxTarget/2 < auxSquare {
		auxSquare = auxTarget / 2
	}
	return Layout{
		Width:           mainW + auxSquare,
		Height:          mainH + r.theme.TitleBandHeight,
		TitleBandHeight: r.theme.TitleBandHeight,
		AuxSquare:       auxSquare,
		InfoHeight:      mainH - 2*auxSquare,
	}
}

// Compose assembles the panels and the title band into the final sheet and
// applies the theme's finishing pass.
func (r *Renderer) Compose(panels *Panels, style Style) image.Image {
	mainB := panels.Main.Image.Bounds()
	layout := r.ComputeLayout(mainB.Dx(), mainB.Dy())

	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetHexColor(r.theme.Surface)
	dc.Clear()

	r.drawTitleBand(dc, layout, style)

	top := layout.TitleBandHeight
	draw.Draw(dc.Image().(*image.RGBA),
		image.Rect(0, top, mainB.Dx(), top+mainB.Dy()),
		panels.Main.Image, mainB.Min, draw.Src)

	lx := mainB.Dx()
	placeResized(dc, panels.State.Image, lx, top, layout.AuxSquare, layout.AuxSquare)
	placeResized(dc, panels.Country.Image, lx, top+layout.AuxSquare, layout.AuxSquare, layout.AuxSquare)
	placeResized(dc, panels.Info.Image, lx, top+2*layout.AuxSquare, layout.AuxSquare, layout.InfoHeight)

	out := dc.Image()
	if r.theme.FinalSaturation != 1 {
		out = AdjustSaturation(out, r.theme.FinalSaturation)
	}
	if r.theme.FinalContrast != 1 {
		out = AdjustContrast(out, r.theme.FinalContrast)
	}
	return out
}

func (r *Renderer) drawTitleBand(dc *gg.Context, layout Layout, style Style) {
	w := float64(layout.Width)
	h := float64(layout.TitleBandHeight)

	dc.SetHexColor(r.theme.Accent)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	title := style.Title
	if title == "" {
		title = "MAPA DE LOCALIZAÇÃO"
	}
	cx := w / 2
	titleY := h * 0.42

	dc.SetFontFace(r.fonts.BoldFace(r.theme.TitleSize))
	// Drop shadow, then the title itself.
	dc.SetRGBA(0, 0, 0, 0.35)
	dc.DrawStringAnchored(title, cx+3, titleY+3, 0.5, 0.5)
	dc.SetHexColor(r.theme.Surface)
	dc.DrawStringAnchored(title, cx, titleY, 0.5, 0.5)

	if sub := formatSubtitle(style.Subtitle); sub != "" {
		dc.SetFontFace(r.fonts.Face(r.theme.SubtitleSize))
		dc.SetHexColor(r.theme.Surface)
		dc.DrawStringAnchored(sub, cx, h*0.78, 0.5, 0.5)
	}
}

// formatSubtitle uppercases and truncates the subtitle to keep the band on
// one line.
func formatSubtitle(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	runes := []rune(s)
	if len(runes) > subtitleMaxLen {
		return string(runes[:subtitleMaxLen]) + "..."
	}
	return s
}

// placeResized scales src to w×h with Catmull-Rom resampling and draws it at
// (x, y).
func placeResized(dc *gg.Context, src image.Image, x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	sb := src.Bounds()
	if sb.Dx() == w && sb.Dy() == h {
		draw.Draw(dc.Image().(*image.RGBA), image.Rect(x, y, x+w, y+h), src, sb.Min, draw.Src)
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, sb, xdraw.Src, nil)
	draw.Draw(dc.Image().(*image.RGBA), image.Rect(x, y, x+w, y+h), scaled, image.Point{}, draw.Src)
}
