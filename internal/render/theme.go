// Package render draws the map panels (main, state inset, country inset,
// legend/info block) and composes them with a title band into the final
// bitmap. All visual variation between the product's map styles lives in the
// Theme value object; the pipeline itself is shared.
package render

import (
	"fmt"
	"strings"
)

// Theme holds every style constant that differs between map variants:
// palette, typography, panel margins, basemap preferences, enhancement
// factors and the output filename suffix.
type Theme struct {
	Name string

	// FileSuffix is appended to the project id to form the artifact name.
	FileSuffix string

	// Palette (hex colors).
	Surface       string
	Background    string
	Border        string
	TextPrimary   string
	TextSecondary string
	Accent        string
	GridColor     string
	GridAlpha     float64

	// Basemap tile providers tried in order; the plain background is always
	// the implicit last resort.
	BasemapProviders []string
	BasemapAlpha     float64

	// Framing margins in projected meters.
	MainMarginMeters    float64
	StateMarginMeters   float64
	CountryMarginMeters float64

	// Typography in pixels at the 300 dpi working resolution.
	TitleSize    float64
	SubtitleSize float64
	HeadingSize  float64
	BodySize     float64
	CaptionSize  float64

	// Title band height in pixels.
	TitleBandHeight int

	// Panel border.
	PanelBorderColor string
	PanelBorderWidth float64

	// BackdropFill fills administrative backdrop polygons; when false only
	// their outlines are drawn.
	BackdropFill bool

	// North-arrow enhancement factors (1.0 = unchanged).
	ArrowContrast   float64
	ArrowSaturation float64

	// Global pass applied to the composite before encoding (1.0 = skipped).
	FinalSaturation float64
	FinalContrast   float64
}

// Classic is the original plain style: no tile backdrop emphasis, neutral
// greys, default margins.
func Classic() Theme {
	return Theme{
		Name:                "classic",
		FileSuffix:          "_map.png",
		Surface:             "#FFFFFF",
		Background:          "#F5F5F5",
		Border:              "#CCCCCC",
		TextPrimary:         "#333333",
		TextSecondary:       "#666666",
		Accent:              "#2E8B57",
		GridColor:           "#999999",
		GridAlpha:           0.3,
		BasemapProviders:    []string{"carto-light", "osm"},
		BasemapAlpha:        0.8,
		MainMarginMeters:    3000,
		StateMarginMeters:   2000,
		CountryMarginMeters: 80000,
		TitleSize:           120,
		SubtitleSize:        60,
		HeadingSize:         67,
		BodySize:            50,
		CaptionSize:         42,
		TitleBandHeight:     250,
		PanelBorderColor:    "#CCCCCC",
		PanelBorderWidth:    5,
		BackdropFill:        true,
		ArrowContrast:       1.0,
		ArrowSaturation:     1.0,
		FinalSaturation:     1.0,
		FinalContrast:       1.0,
	}
}

// Modern is the light professional style: muted Carto basemap, filled grey
// state backdrop, thin borders, slight arrow contrast boost.
func Modern() Theme {
	return Theme{
		Name:                "modern",
		FileSuffix:          "_modern_map.png",
		Surface:             "#FFFFFF",
		Background:          "#F8FAFC",
		Border:              "#E5E7EB",
		TextPrimary:         "#1F2937",
		TextSecondary:       "#6B7280",
		Accent:              "#1E3A8A",
		GridColor:           "#E5E7EB",
		GridAlpha:           0.2,
		BasemapProviders:    []string{"carto-light", "osm"},
		BasemapAlpha:        0.8,
		MainMarginMeters:    3000,
		StateMarginMeters:   2000,
		CountryMarginMeters: 80000,
		TitleSize:           120,
		SubtitleSize:        60,
		HeadingSize:         67,
		BodySize:            50,
		CaptionSize:         42,
		TitleBandHeight:     250,
		PanelBorderColor:    "#E5E7EB",
		PanelBorderWidth:    6,
		BackdropFill:        true,
		ArrowContrast:       1.2,
		ArrowSaturation:     1.0,
		FinalSaturation:     1.0,
		FinalContrast:       1.0,
	}
}

// Vivid is the high-contrast colorful style: raw OSM basemap, outline-only
// backdrop, saturated arrow, global color/contrast boost, taller title band.
func Vivid() Theme {
	return Theme{
		Name:                "vivid",
		FileSuffix:          "_vivid_map.png",
		Surface:             "#FFFFFF",
		Background:          "#F0F8FF",
		Border:              "#E5E7EB",
		TextPrimary:         "#1A1A1A",
		TextSecondary:       "#2E2E2E",
		Accent:              "#026983",
		GridColor:           "#FFD600",
		GridAlpha:           0.4,
		BasemapProviders:    []string{"osm", "carto-light"},
		BasemapAlpha:        0.9,
		MainMarginMeters:    2500,
		StateMarginMeters:   2000,
		CountryMarginMeters: 80000,
		TitleSize:           120,
		SubtitleSize:        60,
		HeadingSize:         67,
		BodySize:            50,
		CaptionSize:         42,
		TitleBandHeight:     280,
		PanelBorderColor:    "#026983",
		PanelBorderWidth:    10,
		BackdropFill:        false,
		ArrowContrast:       1.5,
		ArrowSaturation:     1.3,
		FinalSaturation:     1.1,
		FinalContrast:       1.05,
	}
}

// ThemeByName resolves a theme by its name.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "", "classic":
		return Classic(), nil
	case "modern":
		return Modern(), nil
	case "vivid":
		return Vivid(), nil
	default:
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
}

// ThemeNames lists the available themes.
func ThemeNames() []string {
	return []string{"classic", "modern", "vivid"}
}
