package render

import (
	"context"
	"fmt"
	"image"

	sm "github.com/flopp/go-staticmaps"
	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Basemap produces a background raster covering at least the requested
// window (projected meters). It returns the window actually covered, which
// may be wider than requested when tiles force a particular zoom level.
type Basemap interface {
	Name() string
	Render(ctx context.Context, window orb.Bound, width, height int) (image.Image, orb.Bound, error)
}

// TileBasemap renders slippy-map tiles from one provider via go-staticmaps.
type TileBasemap struct {
	provider *sm.TileProvider
}

// NewTileBasemap returns a tile basemap for a named provider. Known names:
// "osm", "carto-light", "carto-dark".
func NewTileBasemap(name string) (*TileBasemap, error) {
	var p *sm.TileProvider
	switch name {
	case "osm":
		p = sm.NewTileProviderOpenStreetMaps()
	case "carto-light":
		p = sm.NewTileProviderCartoLight()
	case "carto-dark":
		p = sm.NewTileProviderCartoDark()
	default:
		return nil, fmt.Errorf("unknown tile provider %q", name)
	}
	return &TileBasemap{provider: p}, nil
}

// Name returns the provider name.
func (b *TileBasemap) Name() string { return b.provider.Name }

// Render downloads and stitches tiles for the window.
func (b *TileBasemap) Render(ctx context.Context, window orb.Bound, width, height int) (image.Image, orb.Bound, error) {
	if err := ctx.Err(); err != nil {
		return nil, orb.Bound{}, err
	}

	mc := sm.NewContext()
	mc.SetSize(width, height)
	mc.SetTileProvider(b.provider)

	sw := project.Mercator.ToWGS84(window.Min)
	ne := project.Mercator.ToWGS84(window.Max)
	rect, err := sm.CreateBBox(ne[1], sw[0], sw[1], ne[0])
	if err != nil {
		return nil, orb.Bound{}, fmt.Errorf("building bounding box: %w", err)
	}
	mc.SetBoundingBox(*rect)

	img, trueBounds, err := mc.RenderWithBounds()
	if err != nil {
		return nil, orb.Bound{}, fmt.Errorf("rendering tiles from %s: %w", b.provider.Name, err)
	}

	lo := project.WGS84.ToMercator(orb.Point{trueBounds.Lo().Lng.Degrees(), trueBounds.Lo().Lat.Degrees()})
	hi := project.WGS84.ToMercator(orb.Point{trueBounds.Hi().Lng.Degrees(), trueBounds.Hi().Lat.Degrees()})
	return img, orb.Bound{Min: lo, Max: hi}, nil
}

// PlainBasemap is the offline fallback: a flat background at exactly the
// requested window. It cannot fail.
type PlainBasemap struct {
	// Hex is the background fill color.
	Hex string
}

// Name identifies the fallback in degradation logs.
func (b *PlainBasemap) Name() string { return "plain" }

// Render fills the panel with the background color.
func (b *PlainBasemap) Render(_ context.Context, window orb.Bound, width, height int) (image.Image, orb.Bound, error) {
	dc := gg.NewContext(width, height)
	dc.SetHexColor(b.Hex)
	dc.Clear()
	return dc.Image(), window, nil
}
