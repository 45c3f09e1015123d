package render

import (
	"os"

	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontSet resolves the ordered font candidate list once at construction into
// concrete font handles. The Go fonts bundled with the binary are the
// guaranteed fallback, so text rendering can never fail a job.
type FontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// DefaultFontCandidates are common system locations for the preferred fonts,
// tried in order before the bundled fallback.
var DefaultFontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/Library/Fonts/Arial.ttf",
	"C:\\Windows\\Fonts\\arial.ttf",
}

// ResolveFonts loads the first parseable candidate, falling back to the
// bundled Go fonts. Candidates that are missing or unparseable are logged
// and skipped.
func ResolveFonts(candidates []string, log zerolog.Logger) *FontSet {
	fs := &FontSet{}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			log.Warn().Err(err).Str("font", path).Msg("skipping unparseable font")
			continue
		}
		fs.regular = f
		fs.bold = f
		log.Debug().Str("font", path).Msg("resolved system font")
		break
	}

	if fs.regular == nil {
		if f, err := truetype.Parse(goregular.TTF); err == nil {
			fs.regular = f
		}
	}
	if fs.bold == nil {
		if f, err := truetype.Parse(gobold.TTF); err == nil {
			fs.bold = f
		}
	}
	return fs
}

// Face returns a regular face at the given pixel size.
func (fs *FontSet) Face(size float64) font.Face {
	if fs == nil || fs.regular == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(fs.regular, &truetype.Options{Size: size})
}

// BoldFace returns a bold face at the given pixel size.
func (fs *FontSet) BoldFace(size float64) font.Face {
	if fs == nil || fs.bold == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(fs.bold, &truetype.Options{Size: size})
}
