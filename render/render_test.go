package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeatGlow/badge/images"
	"github.com/BeatGlow/badge/pixel"
	"github.com/BeatGlow/badge/region"
	"github.com/BeatGlow/badge/share"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	table, err := images.Load()
	require.NoError(t, err)
	r, err := New(table)
	require.NoError(t, err)
	return r
}

func inkIn(img image.Image, r image.Rectangle) (ink int) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !img.At(x, y).(pixel.Mono).On {
				ink++
			}
		}
	}
	return
}

func TestRenderStaysInRegion(t *testing.T) {
	r := newRenderer(t)
	snap := share.Snapshot{WifiCount: 42, TemperatureF: 71, HumidityPct: 38, Clock: "12:34", Networks: []string{"home", "cafe"}}

	regions := []region.Region{
		{Name: "top", Kind: region.TopBar, Rect: image.Rect(0, 0, 296, 24)},
		{Name: "time", Kind: region.Clock, Rect: image.Rect(0, 24, 144, 40), Style: region.Style{Border: true}},
		{Name: "name", Kind: region.Name, Rect: image.Rect(0, 40, 144, 128), Style: region.Style{Face: "bold", Lines: []string{"Ada", "Engineer"}}},
		{Name: "image", Kind: region.Image, Rect: image.Rect(144, 24, 296, 128)},
		{Name: "header", Kind: region.NetworkHeader, Rect: image.Rect(0, 0, 296, 24), Style: region.Style{Invert: true}},
		{Name: "list", Kind: region.NetworkList, Rect: image.Rect(0, 24, 296, 128), Style: region.Style{Face: "regular"}},
	}
	for _, reg := range regions {
		t.Run(reg.Name, func(t *testing.T) {
			dst := pixel.NewMonoImage(296, 128)
			dst.Fill(pixel.Off)

			require.NoError(t, r.Render(dst, reg, snap))

			outside := dst.Bounds().Dx()*dst.Bounds().Dy() - reg.Rect.Dx()*reg.Rect.Dy()
			assert.Equal(t, outside, inkIn(dst, dst.Bounds())-inkIn(dst, reg.Rect), "pixels outside the region must be untouched")

			ink := inkIn(dst, reg.Rect)
			assert.Greater(t, ink, 0, "region has content")
			assert.Less(t, ink, reg.Rect.Dx()*reg.Rect.Dy(), "region was erased")
		})
	}
}

func TestRenderImageErasesPrevious(t *testing.T) {
	r := newRenderer(t)
	reg := region.Region{Name: "image", Kind: region.Image, Rect: image.Rect(144, 24, 296, 128)}
	dst := pixel.NewMonoImage(296, 128)

	require.NoError(t, r.Render(dst, reg, share.Snapshot{Image: int(images.Ferris)}))
	// Ferris extends left of the Repo image.
	assert.Greater(t, inkIn(dst, image.Rect(150, 26, 190, 106)), 0)

	require.NoError(t, r.Render(dst, reg, share.Snapshot{Image: int(images.Repo)}))
	assert.Zero(t, inkIn(dst, image.Rect(144, 24, 190, 128)), "stale pixels of the previous image remain")
	assert.Greater(t, inkIn(dst, image.Rect(190, 26, 286, 122)), 0)
}

func TestRenderErrors(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	dst := pixel.NewMonoImage(296, 128)

	assert.Error(t, r.Render(dst, region.Region{Name: "image", Kind: region.Image, Rect: image.Rect(144, 24, 296, 128)}, share.Snapshot{}))
	assert.Error(t, r.Render(dst, region.Region{Name: "bad", Kind: region.Kind(99), Rect: image.Rect(0, 0, 8, 8)}, share.Snapshot{}))

	assert.True(t, r.HasFace("bold"))
	assert.False(t, r.HasFace("italic"))
}
