// Package draw provides the drawing primitives used to compose panel regions.
//
// It wraps [image/draw] so callers only need a single import for compositing,
// shapes and text.
package draw

import (
	"image"
	"image/color"
	"image/draw"
)

// Drawer is an alias for [image/draw.Drawer].
type Drawer = draw.Drawer

// Image is an alias for [image/draw.Image].
type Image = draw.Image

// Op is an alias for image/draw.Op
type Op = draw.Op

const (
	// Over specifies ``(src in mask) over dst''.
	Over Op = iota

	// Src specifies ``src in mask''.
	Src
)

// Draw calls [DrawMask] with a nil mask.
func Draw(dst Image, r image.Rectangle, src image.Image, sp image.Point, op Op) {
	DrawMask(dst, r, src, sp, nil, image.Point{}, op)
}

// DrawMask aligns r.Min in dst with sp in src and mp in mask and then replaces the rectangle r
// in dst with the result of a Porter-Duff composition. A nil mask is treated as opaque.
func DrawMask(dst Image, r image.Rectangle, src image.Image, sp image.Point, mask image.Image, mp image.Point, op Op) {
	draw.DrawMask(dst, r, src, sp, mask, mp, op)
}

// Bitmap copies src into dst with its top-left corner at pt.
func Bitmap(dst Image, pt image.Point, src image.Image) {
	b := src.Bounds()
	Draw(dst, image.Rectangle{Min: pt, Max: pt.Add(b.Size())}, src, b.Min, Src)
}

// Clip returns an image that forwards to dst but ignores writes outside r.
func Clip(dst Image, r image.Rectangle) Image {
	return &clipped{Image: dst, r: r.Intersect(dst.Bounds())}
}

type clipped struct {
	Image
	r image.Rectangle
}

func (c *clipped) Bounds() image.Rectangle {
	return c.r
}

func (c *clipped) Set(x, y int, v color.Color) {
	if (image.Point{X: x, Y: y}).In(c.r) {
		c.Image.Set(x, y, v)
	}
}
