package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/joeblew999/plat-maps/internal/scale"
)

// renderInfo renders the legend and cartographic information block. Its
// height is provisional; the compositor resizes it to fill the remaining
// lateral space.
func (r *Renderer) renderInfo(style Style, sc scale.Scale) image.Image {
	w := r.opts.InsetSize
	h := r.opts.InsetSize * 2 / 3

	dc := gg.NewContext(w, h)
	dc.SetHexColor(r.theme.Surface)
	dc.Clear()

	pad := float64(w) * 0.06
	y := pad + r.theme.HeadingSize

	if style.ShowLegend {
		dc.SetFontFace(r.fonts.BoldFace(r.theme.HeadingSize))
		dc.SetHexColor(r.theme.TextPrimary)
		dc.DrawString("LEGENDA", pad, y)
		y += r.theme.HeadingSize * 0.8

		// Swatch in the project's primary color, labeled with the project
		// area wording used throughout the product.
		swatch := r.theme.BodySize
		setHexAlpha(dc, style.PrimaryColor, 0.8)
		dc.DrawRectangle(pad, y, swatch, swatch)
		dc.Fill()
		dc.SetHexColor(style.SecondaryColor)
		dc.SetLineWidth(3)
		dc.DrawRectangle(pad, y, swatch, swatch)
		dc.Stroke()

		dc.SetFontFace(r.fonts.Face(r.theme.BodySize))
		dc.SetHexColor(r.theme.TextPrimary)
		dc.DrawString("Área do projeto", pad+swatch*1.5, y+swatch*0.8)
		y += swatch + r.theme.BodySize*1.6
	}

	dc.SetFontFace(r.fonts.BoldFace(r.theme.HeadingSize))
	dc.SetHexColor(r.theme.TextPrimary)
	dc.DrawString("INFORMAÇÕES CARTOGRÁFICAS", pad, y)
	y += r.theme.HeadingSize * 0.9

	dc.SetFontFace(r.fonts.Face(r.theme.BodySize))
	for _, line := range infoLines(style, sc) {
		dc.DrawString(line, pad, y)
		y += r.theme.BodySize * 1.4
	}

	if style.LogoPath != "" {
		if logo, err := loadImage(style.LogoPath); err == nil {
			r.drawLogo(dc, logo, w, h, pad)
		} else {
			r.log.Warn().Err(err).Str("path", style.LogoPath).Msg("logo unavailable")
		}
	}

	r.drawBorder(dc, w, h)
	return dc.Image()
}

// infoLines builds the cartographic metadata lines: coordinate system, datum
// and projection each on their own line, then scale, generation date and any
// extra lines from the style.
func infoLines(style Style, sc scale.Scale) []string {
	lines := []string{
		"Sistema de Coordenadas Geográficas",
		"Datum: SIRGAS 2000 (EPSG:4326)",
		"Projeção: Web Mercator (EPSG:3857)",
	}
	if style.ShowScale {
		lines = append(lines, fmt.Sprintf("Escala %s", sc.Label))
	}
	lines = append(lines, fmt.Sprintf("Data de geração: %s", time.Now().Format("02/01/2006")))
	return append(lines, splitInfoLines(style.AdditionalInfo)...)
}

// drawLogo fits the logo into the bottom-right corner, preserving aspect.
func (r *Renderer) drawLogo(dc *gg.Context, logo image.Image, w, h int, pad float64) {
	maxSide := float64(w) * 0.22
	lb := logo.Bounds()
	sx := maxSide / float64(lb.Dx())
	sy := maxSide / float64(lb.Dy())
	s := sx
	if sy < s {
		s = sy
	}
	tw := int(float64(lb.Dx()) * s)
	th := int(float64(lb.Dy()) * s)

	scaled := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), logo, lb, xdraw.Over, nil)
	dc.DrawImage(scaled, w-tw-int(pad), h-th-int(pad))
}

func splitInfoLines(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening logo: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding logo: %w", err)
	}
	return img, nil
}
