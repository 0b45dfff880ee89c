// Package images holds the rotating badge images.
//
// The payloads are compiled into the binary and decoded once by [Load] into
// read-only monochrome images.
package images

import (
	"bytes"
	"embed"
	"fmt"
	"image"

	"golang.org/x/image/bmp"

	"github.com/BeatGlow/badge/draw"
	"github.com/BeatGlow/badge/pixel"
	"github.com/BeatGlow/badge/share"
)

//go:embed assets/*.bmp
var assets embed.FS

// ID identifies an image.
type ID uint8

// Images, in rotation order.
const (
	Ferris ID = iota
	Repo
	count
)

// Count is the number of images.
const Count = int(count)

type entry struct {
	name   string
	file   string
	anchor image.Point
}

var table = [...]entry{
	Ferris: {name: "ferris", file: "assets/ferris.bmp", anchor: image.Pt(150, 26)},
	Repo:   {name: "repo", file: "assets/repo.bmp", anchor: image.Pt(190, 26)},
}

func (id ID) String() string {
	if id < count {
		return table[id].name
	}
	return fmt.Sprintf("image(%d)", uint8(id))
}

// Next is the following image, wrapping around.
func (id ID) Next() ID {
	return FromOrdinal((int(id.mustValid()) + 1) % Count)
}

// Previous is the preceding image, wrapping around.
func (id ID) Previous() ID {
	return FromOrdinal((int(id.mustValid()) + Count - 1) % Count)
}

// Anchor is where the top-left corner of the image is drawn.
func (id ID) Anchor() image.Point {
	return table[id.mustValid()].anchor
}

func (id ID) mustValid() ID {
	if id >= count {
		panic(fmt.Sprintf("images: invalid %s", id))
	}
	return id
}

// FromOrdinal returns the image with the given ordinal, panicking when out of range.
func FromOrdinal(n int) ID {
	if n < 0 || n >= Count {
		panic(fmt.Sprintf("images: ordinal %d out of range", n))
	}
	return ID(n)
}

// Direction of a rotation.
type Direction int8

// Rotation directions.
const (
	Forward  Direction = 1
	Backward Direction = -1
)

// Rotate publishes the successor (or predecessor) of the current image and signals
// [share.ChangeImage]. It returns the new image.
func Rotate(surface *share.Surface, dir Direction) ID {
	_, next := surface.Update(share.ImageIndex, func(v int64) int64 {
		id := FromOrdinal(int(v))
		if dir < 0 {
			return int64(id.Previous())
		}
		return int64(id.Next())
	})
	surface.Signal(share.ChangeImage)
	return ID(next)
}

// Table holds the decoded images.
type Table struct {
	images [count]*pixel.MonoImage
}

// Load decodes every embedded image.
func Load() (*Table, error) {
	t := new(Table)
	for id := ID(0); id < count; id++ {
		data, err := assets.ReadFile(table[id].file)
		if err != nil {
			return nil, err
		}
		img, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("images: %s: %w", id, err)
		}
		t.images[id] = img
	}
	return t, nil
}

func decode(data []byte) (*pixel.MonoImage, error) {
	src, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	img := pixel.NewMonoImage(b.Dx(), b.Dy())
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return img, nil
}

// Image returns the decoded image. The result must not be modified.
func (t *Table) Image(id ID) image.Image {
	return t.images[id.mustValid()]
}

// Bounds is the panel rectangle covered by the image at its anchor.
func (t *Table) Bounds(id ID) image.Rectangle {
	return t.images[id.mustValid()].Bounds().Add(id.Anchor())
}

// Footprint is the union of every image at its anchor. A clear rectangle containing
// the footprint erases any previously drawn image.
func (t *Table) Footprint() image.Rectangle {
	var r image.Rectangle
	for id := ID(0); id < count; id++ {
		r = r.Union(t.Bounds(id))
	}
	return r
}
