// Package scale converts between panel framing math and the human-readable
// cartographic values printed on the map: degree-minute-second tick labels
// and the display scale ratio snapped to a ladder of standard scales.
package scale

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Axis selects which hemisphere suffix a tick label gets.
type Axis int

const (
	// Longitude labels get W/E suffixes.
	Longitude Axis = iota
	// Latitude labels get S/N suffixes.
	Latitude
)

// printWidthMeters is the assumed physical width of the printed main panel
// (20 cm, the usable width of a landscape A4 sheet). The display scale is
// derived against it.
const printWidthMeters = 0.20

// FallbackLabel is shown when the scale cannot be computed; scale display is
// cosmetic and must not fail a render.
const FallbackLabel = "1:15.000"

// ladder maps ratio upper bounds to display labels. A ratio below a rung's
// bound takes that rung; beyond the last bound the largest scale is used.
// Bounds sit halfway between neighboring scales so each rung captures the
// ratios it rounds best.
var ladder = []struct {
	upper float64
	value float64
	label string
}{
	{7500, 5000, "1:5.000"},
	{12500, 10000, "1:10.000"},
	{17500, 15000, "1:15.000"},
	{25000, 20000, "1:20.000"},
	{37500, 30000, "1:30.000"},
	{75000, 50000, "1:50.000"},
	{150000, 100000, "1:100.000"},
}

const largestValue = 200000

const largestLabel = "1:200.000"

// Scale is a snapped display scale.
type Scale struct {
	Value float64
	Label string
}

// Snap rounds a raw ratio to the ladder of standard cartographic scales.
// Snapping is idempotent: feeding a rung's value back in returns the same
// rung.
func Snap(ratio float64) Scale {
	for _, rung := range ladder {
		if ratio < rung.upper {
			return Scale{Value: rung.value, Label: rung.label}
		}
	}
	return Scale{Value: largestValue, Label: largestLabel}
}

// ForMapWidth derives the display scale from the main panel's framed width in
// projected meters, assuming the fixed print width. Non-positive widths (an
// empty geometry) fall back to the default label rather than failing.
func ForMapWidth(geoWidthMeters float64) Scale {
	if geoWidthMeters <= 0 || math.IsNaN(geoWidthMeters) || math.IsInf(geoWidthMeters, 0) {
		return Scale{Value: 15000, Label: FallbackLabel}
	}
	return Snap(geoWidthMeters / printWidthMeters)
}

// FormatDMS renders a projected-frame coordinate as a degree-minute-second
// tick label with the hemisphere suffix derived from sign, e.g. 22°54'30"S.
func FormatDMS(mercatorCoord float64, axis Axis) string {
	var coord float64
	var suffix string
	if axis == Longitude {
		p := project.Mercator.ToWGS84(orb.Point{mercatorCoord, 0})
		coord = p[0]
		suffix = "E"
		if coord < 0 {
			suffix = "W"
		}
	} else {
		p := project.Mercator.ToWGS84(orb.Point{0, mercatorCoord})
		coord = p[1]
		suffix = "N"
		if coord < 0 {
			suffix = "S"
		}
	}

	abs := math.Abs(coord)
	degrees := int(abs)
	minutes := int((abs - float64(degrees)) * 60)
	seconds := int(((abs-float64(degrees))*60 - float64(minutes)) * 60)

	return fmt.Sprintf("%d°%02d'%02d\"%s", degrees, minutes, seconds, suffix)
}
