package pixel

import "image/color"

// MonoModel converts any color to [Mono] by luminance threshold.
var MonoModel color.Model = color.ModelFunc(monoModel)

var (
	// Off is ink (black on most panels).
	Off = Mono{false}

	// On is paper (white).
	On = Mono{true}
)

// Mono represents a 1-bit monochrome color.
type Mono struct {
	On bool
}

func (c Mono) RGBA() (r, g, b, a uint32) {
	if c.On {
		return 0xffff, 0xffff, 0xffff, 0xffff
	}
	return 0, 0, 0, 0xffff
}

func monoModel(c color.Color) color.Color {
	if _, ok := c.(Mono); ok {
		return c
	}
	r, g, b, a := c.RGBA()

	// Fully transparent pixels are paper, so bitmaps with an alpha channel
	// do not leave ink blocks behind.
	if a == 0 {
		return On
	}

	// These coefficients (the fractions 0.299, 0.587 and 0.114) are the same
	// as those given by the JFIF specification and used by func RGBToYCbCr in
	// ycbcr.go.
	//
	// Note that 19595 + 38470 + 7471 equals 65536.
	//
	// The 31 is 16 + 15. The 16 is the same as used in RGBToYCbCr. The 15 is
	// because the return value is 1 bit color, not 16 bit color.
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 31

	return Mono{On: y != 0}
}

// Invert returns the opposite color.
func (c Mono) Invert() Mono {
	return Mono{On: !c.On}
}
