package pixel

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonoImage(t *testing.T) {
	testImage(t, func(size image.Point) Image {
		return NewMonoImage(size.X, size.Y)
	})
}

func TestMonoColumnImage(t *testing.T) {
	testImage(t, func(size image.Point) Image {
		return NewMonoColumnImage(size.X, size.Y)
	})
}

func TestMonoColumnImageLayout(t *testing.T) {
	i := NewMonoColumnImage(4, 16)
	require.Equal(t, 2, i.Stride)
	require.Len(t, i.Pix, 8)

	i.Set(1, 0, Off)
	i.Set(1, 9, Off)
	assert.Equal(t, byte(0x7f), i.Pix[2], "top pixel is the most significant bit")
	assert.Equal(t, byte(0xbf), i.Pix[3])
	assert.Equal(t, byte(0xff), i.Pix[0])
}

func TestMonoColumnImageWindow(t *testing.T) {
	i := NewMonoColumnImage(8, 24)
	i.Set(2, 8, Off)
	i.Set(3, 23, Off)

	w := i.Window(image.Rect(2, 8, 4, 24))
	assert.Equal(t, []byte{0x7f, 0xff, 0xff, 0xfe}, w)

	// Rows round outwards to whole banks.
	assert.Len(t, i.Window(image.Rect(0, 3, 1, 9)), 2)

	assert.Nil(t, i.Window(image.Rect(10, 0, 12, 8)))
}

func testImage(t *testing.T, f func(image.Point) Image) {
	t.Helper()
	testCases := []image.Point{
		{},
		image.Pt(1, 1),
		image.Pt(2, 2),
		image.Pt(296, 128),
		image.Pt(13, 7),
	}
	for _, test := range testCases {
		t.Run(test.String(), func(it *testing.T) {
			i := f(test)

			if v := i.Bounds().Size(); !v.Eq(test) {
				it.Errorf("expected image size %s, got %s", test, v)
			}

			if v := i.ColorModel(); v != MonoModel {
				it.Errorf("expected mono color model, got %T", v)
			}

			it.Run("in-bounds", func(itt *testing.T) {
				for y := 0; y < test.Y; y++ {
					for x := 0; x < test.X; x++ {
						c := testRandomColor()
						i.Set(x, y, c)
						if v := i.ColorModel().Convert(c); i.At(x, y) != v {
							itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v (%v)", x, y, i.At(x, y), v, c)
							return
						}
					}
				}
			})

			it.Run("out-bounds", func(itt *testing.T) {
				for y := -test.Y; y < test.Y*2; y++ {
					for x := -test.X; x < test.X*2; x++ {
						i.Set(x, y, testRandomColor())
						if x < 0 || y < 0 {
							if v := i.At(x, y); v != color.Transparent {
								itt.Fatalf("pixel (%d,%d) is %#+v, expected transparent", x, y, v)
								return
							}
						}
					}
				}
			})

			it.Run("fill", func(itt *testing.T) {
				c := testRandomColor()
				i.Fill(c)
				if test.X > 0 && test.Y > 0 {
					x := rand.Intn(test.X)
					y := rand.Intn(test.Y)
					if v := i.ColorModel().Convert(c); i.At(x, y) != v {
						itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v (%v)", x, y, i.At(x, y), v, c)
						return
					}
				}
			})

			it.Run("clear", func(itt *testing.T) {
				i.Fill(Off)
				i.Clear()
				if test.X > 0 && test.Y > 0 {
					x := rand.Intn(test.X)
					y := rand.Intn(test.Y)
					if v := i.At(x, y); v != On {
						itt.Fatalf("pixel (%d,%d) is not paper", x, y)
					}
				}
			})
		})
	}
}

func testRandomColor() color.Color {
	return color.RGBA{
		R: uint8(rand.Intn(255)),
		G: uint8(rand.Intn(255)),
		B: uint8(rand.Intn(255)),
		A: 0xFF,
	}
}
