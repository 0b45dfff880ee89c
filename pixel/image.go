package pixel

import (
	"image"
	"image/color"

	"github.com/BeatGlow/badge/draw"
)

type Image interface {
	draw.Image

	// Clear the image to paper.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Buffer holds the pixel values and is a container that is used by the image formats in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between adjacent lines.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

// Clear sets every pixel to paper.
func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0xff
	}
}

func (p *Buffer) fill(c color.Color) {
	var value byte
	if monoModel(c).(Mono).On {
		value = 0xff
	}
	for i := range p.Pix {
		p.Pix[i] = value
	}
}

func makeBuffer(w, h, stride, size int) Buffer {
	b := Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, size),
		Stride: stride,
	}
	b.Clear()
	return b
}

// MonoImage is a 1-bit per pixel row-major monochrome image, most significant bit first.
type MonoImage struct {
	Buffer
}

func NewMonoImage(w, h int) *MonoImage {
	stride := (w + 7) / 8 // round up to whole bytes
	return &MonoImage{
		Buffer: makeBuffer(w, h, stride, stride*h),
	}
}

func (p *MonoImage) ColorModel() color.Model {
	return MonoModel
}

func (p *MonoImage) PixOffset(x, y int) int {
	return y*p.Stride + x/8
}

func (p *MonoImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	bit := byte(0x80) >> uint(x&7)
	return Mono{On: p.Pix[p.PixOffset(x, y)]&bit != 0}
}

func (p *MonoImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	var (
		index = p.PixOffset(x, y)
		bit   = byte(0x80) >> uint(x&7)
	)
	if monoModel(c).(Mono).On {
		p.Pix[index] |= bit
	} else {
		p.Pix[index] &^= bit
	}
}

func (p *MonoImage) Fill(c color.Color) {
	p.fill(c)
}

// MonoColumnImage is a 1-bit per pixel column-major monochrome image.
//
// Every column is stored as Rect.Dy()/8 consecutive bytes ("banks"), the top-most
// pixel in the most significant bit. This is the native frame buffer layout of
// UC8151 panels mounted in landscape, where a partial window is addressed in whole
// banks vertically and single pixels horizontally.
type MonoColumnImage struct {
	Buffer
}

func NewMonoColumnImage(w, h int) *MonoColumnImage {
	stride := (h + 7) / 8 // round up to whole banks
	return &MonoColumnImage{
		Buffer: makeBuffer(w, h, stride, stride*w),
	}
}

func (p *MonoColumnImage) ColorModel() color.Model {
	return MonoModel
}

func (p *MonoColumnImage) PixOffset(x, y int) int {
	return x*p.Stride + y/8
}

func (p *MonoColumnImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	bit := byte(0x80) >> uint(y&7)
	return Mono{On: p.Pix[p.PixOffset(x, y)]&bit != 0}
}

func (p *MonoColumnImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	var (
		index = p.PixOffset(x, y)
		bit   = byte(0x80) >> uint(y&7)
	)
	if monoModel(c).(Mono).On {
		p.Pix[index] |= bit
	} else {
		p.Pix[index] &^= bit
	}
}

func (p *MonoColumnImage) Fill(c color.Color) {
	p.fill(c)
}

// Window returns the banks covering r, column by column.
//
// The vertical edges of r are rounded outwards to whole banks; r is clipped to the
// image bounds. The returned slice is a copy.
func (p *MonoColumnImage) Window(r image.Rectangle) []byte {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return nil
	}

	var (
		first = r.Min.Y / 8
		last  = (r.Max.Y + 7) / 8
		banks = last - first
		out   = make([]byte, 0, banks*r.Dx())
	)
	for x := r.Min.X; x < r.Max.X; x++ {
		off := x * p.Stride
		out = append(out, p.Pix[off+first:off+last]...)
	}
	return out
}

// Interface checks.
var (
	_ Image = (*MonoImage)(nil)
	_ Image = (*MonoColumnImage)(nil)
)
