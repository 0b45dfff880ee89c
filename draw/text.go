package draw

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Face is an alias for [golang.org/x/image/font.Face].
type Face = font.Face

// DefaultFace is the built-in 7x13 bitmap face, it needs no font data.
var DefaultFace Face = basicfont.Face7x13

// LoadFace parses TrueType font data and returns a face of size points at 72 DPI.
func LoadFace(ttf []byte, size float64) (Face, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("draw: invalid TrueType font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// RegularFace returns the Go regular face at size points.
func RegularFace(size float64) (Face, error) {
	return LoadFace(goregular.TTF, size)
}

// BoldFace returns the Go bold face at size points.
func BoldFace(size float64) (Face, error) {
	return LoadFace(gobold.TTF, size)
}

// Text draws s with its baseline origin at pt and returns the point after the last glyph.
func Text(dst Image, pt image.Point, face Face, c color.Color, s string) image.Point {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y),
	}
	d.DrawString(s)
	return image.Pt(d.Dot.X.Round(), d.Dot.Y.Round())
}

// MeasureText returns the advance width of s in pixels.
func MeasureText(face Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// LineHeight returns the distance between consecutive baselines of face.
func LineHeight(face Face) int {
	m := face.Metrics()
	if h := m.Height.Ceil(); h > 0 {
		return h
	}
	return (m.Ascent + m.Descent).Ceil()
}

// TextBox draws lines top to bottom inside r, starting inset pixels from the top-left
// corner. Glyphs falling outside r are clipped.
func TextBox(dst Image, r image.Rectangle, inset int, face Face, c color.Color, lines ...string) {
	var (
		clip   = Clip(dst, r)
		ascent = face.Metrics().Ascent.Ceil()
		step   = LineHeight(face)
		y      = r.Min.Y + inset + ascent
	)
	for _, line := range lines {
		if y-ascent >= r.Max.Y {
			return
		}
		Text(clip, image.Pt(r.Min.X+inset, y), face, c, line)
		y += step
	}
}
