package render

import (
	"context"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-maps/internal/geoset"
	"github.com/joeblew999/plat-maps/internal/scale"
)

// Panel roles.
const (
	RoleMain    = "main"
	RoleState   = "state"
	RoleCountry = "country"
	RoleInfo    = "info"
)

// Panel is one independently rendered raster.
type Panel struct {
	Role  string
	Image image.Image
}

// Panels holds the four rasters a job produces before composition.
type Panels struct {
	Main    Panel
	State   Panel
	Country Panel
	Info    Panel

	// Scale is the display scale computed from the main panel framing,
	// reused by the info panel and exposed for the job record.
	Scale scale.Scale
}

// Style is the job's read-only styling input, mapped from the project's
// configuration record.
type Style struct {
	Title          string
	Subtitle       string
	PrimaryColor   string
	SecondaryColor string
	ShowScale      bool
	ShowNorthArrow bool
	ShowLegend     bool
	AdditionalInfo string
	LogoPath       string
}

// Options sets the working pixel sizes. The defaults are the 300-dpi
// equivalents of the product's print layout.
type Options struct {
	MainWidth  int
	MainHeight int
	InsetSize  int
}

// DefaultOptions returns the production panel sizes.
func DefaultOptions() Options {
	return Options{MainWidth: 3600, MainHeight: 2700, InsetSize: 1500}
}

// Renderer renders panels and composes the final image for one theme.
type Renderer struct {
	theme    Theme
	fonts    *FontSet
	basemaps []Basemap
	opts     Options
	log      zerolog.Logger
}

// NewRenderer builds a renderer for the theme. The basemap chain is the
// theme's providers in order followed by the plain background, so rendering
// proceeds without tiles when every provider fails.
func NewRenderer(theme Theme, fonts *FontSet, opts Options, log zerolog.Logger) *Renderer {
	if opts.MainWidth <= 0 || opts.MainHeight <= 0 || opts.InsetSize <= 0 {
		opts = DefaultOptions()
	}

	var chain []Basemap
	for _, name := range theme.BasemapProviders {
		b, err := NewTileBasemap(name)
		if err != nil {
			log.Warn().Err(err).Msg("skipping tile provider")
			continue
		}
		chain = append(chain, b)
	}
	chain = append(chain, &PlainBasemap{Hex: theme.Background})

	return &Renderer{theme: theme, fonts: fonts, basemaps: chain, opts: opts, log: log}
}

// NewOfflineRenderer builds a renderer that never touches the network; the
// plain background is the only basemap. Used by tests and air-gapped runs.
func NewOfflineRenderer(theme Theme, fonts *FontSet, opts Options, log zerolog.Logger) *Renderer {
	r := NewRenderer(theme, fonts, opts, log)
	r.basemaps = []Basemap{&PlainBasemap{Hex: theme.Background}}
	return r
}

// Theme returns the renderer's theme.
func (r *Renderer) Theme() Theme { return r.theme }

// projector maps projected-frame coordinates linearly onto panel pixels.
// Tile basemaps and the overlay share Web Mercator, where this mapping is
// exact.
type projector struct {
	win  orb.Bound
	w, h float64
}

func (p projector) xy(pt orb.Point) (float64, float64) {
	x := (pt[0] - p.win.Min[0]) / (p.win.Max[0] - p.win.Min[0]) * p.w
	y := (p.win.Max[1] - pt[1]) / (p.win.Max[1] - p.win.Min[1]) * p.h
	return x, y
}

// RenderPanels renders the main map, both context insets and the info block.
// boundaries and region may be nil; the insets then render without an
// administrative backdrop.
func (r *Renderer) RenderPanels(ctx context.Context, projectSet, boundaries *geoset.Set, region *geoset.Feature, style Style) (*Panels, error) {
	if projectSet == nil || projectSet.Empty() {
		return nil, geoset.ErrNoValidData
	}

	projMerc := geoset.ToMercator(projectSet)
	var boundsMerc *geoset.Set
	if boundaries != nil {
		boundsMerc = geoset.ToMercator(boundaries)
	}
	var regionMerc *geoset.Set
	if region != nil {
		rs := geoset.New(geoset.CRSWGS84)
		rs.Append(region.Geometry, region.Properties)
		regionMerc = geoset.ToMercator(rs)
	}

	pb := projMerc.Bound()
	mapWidthMeters := (pb.Max[0] - pb.Min[0]) + 2*r.theme.MainMarginMeters
	sc := scale.ForMapWidth(mapWidthMeters)

	main, err := r.renderMain(ctx, projMerc, boundsMerc, style)
	if err != nil {
		return nil, err
	}
	state, err := r.renderState(ctx, projMerc, regionMerc, style)
	if err != nil {
		return nil, err
	}
	country, err := r.renderCountry(ctx, projMerc, boundsMerc, regionMerc, style)
	if err != nil {
		return nil, err
	}
	info := r.renderInfo(style, sc)

	return &Panels{
		Main:    Panel{Role: RoleMain, Image: main},
		State:   Panel{Role: RoleState, Image: state},
		Country: Panel{Role: RoleCountry, Image: country},
		Info:    Panel{Role: RoleInfo, Image: info},
		Scale:   sc,
	}, nil
}

func (r *Renderer) renderMain(ctx context.Context, projMerc, boundsMerc *geoset.Set, style Style) (image.Image, error) {
	w, h := r.opts.MainWidth, r.opts.MainHeight
	win := frameWindow(projMerc.Bound(), r.theme.MainMarginMeters, float64(w)/float64(h))

	dc, pr := r.panelBase(ctx, win, w, h)

	if boundsMerc != nil {
		r.drawBackdrop(dc, pr, boundsMerc)
	}
	r.drawProjectGeometry(dc, pr, projMerc, style)
	r.drawGrid(dc, pr, 6)
	r.drawBorder(dc, w, h)

	if style.ShowNorthArrow {
		r.drawNorthArrow(dc, w, h)
	}
	return dc.Image(), nil
}

func (r *Renderer) renderState(ctx context.Context, projMerc, regionMerc *geoset.Set, style Style) (image.Image, error) {
	size := r.opts.InsetSize

	var win orb.Bound
	if regionMerc != nil {
		win = frameWindow(regionMerc.Bound(), r.theme.StateMarginMeters, 1)
	} else {
		// No containing region: widen around the project itself.
		win = frameWindow(projMerc.Bound(), r.theme.StateMarginMeters*10, 1)
	}

	dc, pr := r.panelBase(ctx, win, size, size)
	if regionMerc != nil {
		r.drawBackdrop(dc, pr, regionMerc)
	}
	r.drawProjectGeometry(dc, pr, projMerc, style)
	r.drawGrid(dc, pr, 4)
	r.drawBorder(dc, size, size)
	return dc.Image(), nil
}

func (r *Renderer) renderCountry(ctx context.Context, projMerc, boundsMerc, regionMerc *geoset.Set, style Style) (image.Image, error) {
	size := r.opts.InsetSize

	var win orb.Bound
	if boundsMerc != nil {
		win = frameWindow(boundsMerc.Bound(), r.theme.CountryMarginMeters, 1)
	} else {
		win = frameWindow(projMerc.Bound(), r.theme.CountryMarginMeters*6, 1)
	}

	dc, pr := r.panelBase(ctx, win, size, size)
	if boundsMerc != nil {
		r.drawBackdrop(dc, pr, boundsMerc)
	}
	if regionMerc != nil {
		// Highlight the containing region within the country view.
		for _, f := range regionMerc.Features {
			drawGeometry(dc, pr, f.Geometry, r.theme.TextSecondary, r.theme.TextPrimary, 0.8, 6, 8)
		}
	}
	r.drawProjectGeometry(dc, pr, projMerc, style)
	r.drawGrid(dc, pr, 4)
	r.drawBorder(dc, size, size)
	return dc.Image(), nil
}

// panelBase renders the basemap chain for the window and returns a drawing
// context plus the projector for the window actually covered.
func (r *Renderer) panelBase(ctx context.Context, win orb.Bound, w, h int) (*gg.Context, projector) {
	var img image.Image
	actual := win
	for _, b := range r.basemaps {
		rendered, covered, err := b.Render(ctx, win, w, h)
		if err != nil {
			r.log.Warn().Err(err).Str("basemap", b.Name()).Msg("basemap unavailable, trying next")
			continue
		}
		img, actual = rendered, covered
		break
	}
	if img == nil {
		// The plain basemap never errors, but stay safe.
		dc := gg.NewContext(w, h)
		dc.SetHexColor(r.theme.Background)
		dc.Clear()
		img = dc.Image()
	}

	dc := gg.NewContextForImage(img)
	// Soften the tiles toward the surface color, matching the theme's
	// basemap alpha.
	if r.theme.BasemapAlpha < 1 {
		setHexAlpha(dc, r.theme.Surface, 1-r.theme.BasemapAlpha)
		dc.DrawRectangle(0, 0, float64(w), float64(h))
		dc.Fill()
	}
	return dc, projector{win: actual, w: float64(w), h: float64(h)}
}

func (r *Renderer) drawBackdrop(dc *gg.Context, pr projector, backdrop *geoset.Set) {
	fill := ""
	if r.theme.BackdropFill {
		fill = r.theme.Background
	}
	for _, f := range backdrop.Features {
		drawGeometry(dc, pr, f.Geometry, fill, r.theme.TextSecondary, 0.6, 5, 6)
	}
}

func (r *Renderer) drawProjectGeometry(dc *gg.Context, pr projector, projMerc *geoset.Set, style Style) {
	for _, f := range projMerc.Features {
		drawGeometry(dc, pr, f.Geometry, style.PrimaryColor, style.SecondaryColor, 0.8, 8, 12)
	}
}

// drawGrid draws evenly spaced grid lines across the window with DMS tick
// labels along the bottom and left edges.
func (r *Renderer) drawGrid(dc *gg.Context, pr projector, divisions int) {
	w, h := pr.w, pr.h
	face := r.fonts.Face(r.theme.CaptionSize)
	dc.SetFontFace(face)

	for i := 1; i < divisions; i++ {
		frac := float64(i) / float64(divisions)

		mx := pr.win.Min[0] + frac*(pr.win.Max[0]-pr.win.Min[0])
		x, _ := pr.xy(orb.Point{mx, pr.win.Min[1]})
		setHexAlpha(dc, r.theme.GridColor, r.theme.GridAlpha)
		dc.SetLineWidth(2)
		dc.DrawLine(x, 0, x, h)
		dc.Stroke()

		dc.SetHexColor(r.theme.TextSecondary)
		dc.DrawStringAnchored(scale.FormatDMS(mx, scale.Longitude), x, h-r.theme.CaptionSize*0.6, 0.5, 0.5)

		my := pr.win.Min[1] + frac*(pr.win.Max[1]-pr.win.Min[1])
		_, y := pr.xy(orb.Point{pr.win.Min[0], my})
		setHexAlpha(dc, r.theme.GridColor, r.theme.GridAlpha)
		dc.DrawLine(0, y, w, y)
		dc.Stroke()

		dc.SetHexColor(r.theme.TextSecondary)
		dc.Push()
		dc.RotateAbout(-math.Pi/2, r.theme.CaptionSize*0.6, y)
		dc.DrawStringAnchored(scale.FormatDMS(my, scale.Latitude), r.theme.CaptionSize*0.6, y, 0.5, 0.5)
		dc.Pop()
	}
}

func (r *Renderer) drawBorder(dc *gg.Context, w, h int) {
	dc.SetHexColor(r.theme.PanelBorderColor)
	dc.SetLineWidth(r.theme.PanelBorderWidth)
	inset := r.theme.PanelBorderWidth / 2
	dc.DrawRectangle(inset, inset, float64(w)-r.theme.PanelBorderWidth, float64(h)-r.theme.PanelBorderWidth)
	dc.Stroke()
}

// frameWindow expands a geometry bound by a margin and grows it to the given
// aspect ratio (width/height) around the bound's center. An aspect of 1
// yields the square windows the insets require.
func frameWindow(b orb.Bound, margin, aspect float64) orb.Bound {
	cx := (b.Min[0] + b.Max[0]) / 2
	cy := (b.Min[1] + b.Max[1]) / 2
	width := b.Max[0] - b.Min[0] + 2*margin
	height := b.Max[1] - b.Min[1] + 2*margin

	maxDim := math.Max(width, height)
	targetH := maxDim
	targetW := maxDim * aspect
	if aspect < 1 {
		targetW = maxDim
		targetH = maxDim / aspect
	}

	return orb.Bound{
		Min: orb.Point{cx - targetW/2, cy - targetH/2},
		Max: orb.Point{cx + targetW/2, cy + targetH/2},
	}
}

// drawGeometry paints one geometry. fillHex may be empty for outline-only
// drawing; pointRadius applies to point geometries.
func drawGeometry(dc *gg.Context, pr projector, g orb.Geometry, fillHex, strokeHex string, alpha, lineWidth, pointRadius float64) {
	switch v := g.(type) {
	case orb.Point:
		x, y := pr.xy(v)
		if fillHex != "" {
			setHexAlpha(dc, fillHex, alpha)
			dc.DrawCircle(x, y, pointRadius)
			dc.Fill()
		}
		dc.SetHexColor(strokeHex)
		dc.SetLineWidth(lineWidth / 2)
		dc.DrawCircle(x, y, pointRadius)
		dc.Stroke()

	case orb.MultiPoint:
		for _, p := range v {
			drawGeometry(dc, pr, p, fillHex, strokeHex, alpha, lineWidth, pointRadius)
		}

	case orb.LineString:
		tracePath(dc, pr, v, false)
		dc.SetHexColor(strokeHex)
		dc.SetLineWidth(lineWidth)
		dc.Stroke()

	case orb.MultiLineString:
		for _, ls := range v {
			drawGeometry(dc, pr, ls, fillHex, strokeHex, alpha, lineWidth, pointRadius)
		}

	case orb.Ring:
		drawGeometry(dc, pr, orb.Polygon{v}, fillHex, strokeHex, alpha, lineWidth, pointRadius)

	case orb.Polygon:
		dc.SetFillRuleEvenOdd()
		for _, ring := range v {
			tracePath(dc, pr, orb.LineString(ring), true)
		}
		if fillHex != "" {
			setHexAlpha(dc, fillHex, alpha)
			dc.FillPreserve()
		}
		dc.SetHexColor(strokeHex)
		dc.SetLineWidth(lineWidth)
		dc.Stroke()

	case orb.MultiPolygon:
		for _, poly := range v {
			drawGeometry(dc, pr, poly, fillHex, strokeHex, alpha, lineWidth, pointRadius)
		}

	case orb.Collection:
		for _, sub := range v {
			drawGeometry(dc, pr, sub, fillHex, strokeHex, alpha, lineWidth, pointRadius)
		}
	}
}

func tracePath(dc *gg.Context, pr projector, pts orb.LineString, closed bool) {
	for i, p := range pts {
		x, y := pr.xy(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	if closed {
		dc.ClosePath()
	}
}

// setHexAlpha sets the context color to a hex color with an explicit alpha.
func setHexAlpha(dc *gg.Context, hex string, alpha float64) {
	r, g, b := parseHex(hex)
	dc.SetRGBA(r, g, b, alpha)
}

func parseHex(hex string) (r, g, b float64) {
	if len(hex) == 0 {
		return 0, 0, 0
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) < 6 {
		return 0, 0, 0
	}
	var ri, gi, bi int
	for i, out := range []*int{&ri, &gi, &bi} {
		v := 0
		for _, c := range hex[i*2 : i*2+2] {
			v *= 16
			switch {
			case c >= '0' && c <= '9':
				v += int(c - '0')
			case c >= 'a' && c <= 'f':
				v += int(c-'a') + 10
			case c >= 'A' && c <= 'F':
				v += int(c-'A') + 10
			}
		}
		*out = v
	}
	return float64(ri) / 255, float64(gi) / 255, float64(bi) / 255
}
