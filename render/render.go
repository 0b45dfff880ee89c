// Package render paints regions from a shared-state snapshot.
package render

import (
	"fmt"
	"image"
	"strconv"

	"github.com/BeatGlow/badge/draw"
	"github.com/BeatGlow/badge/images"
	"github.com/BeatGlow/badge/pixel"
	"github.com/BeatGlow/badge/region"
	"github.com/BeatGlow/badge/share"
)

// Face sizes in points.
const (
	RegularSize = 14
	BoldSize    = 16
)

const inset = 4

// Renderer paints regions. It is not safe for concurrent use; the scheduler owns one.
type Renderer struct {
	images *images.Table
	faces  map[string]draw.Face
}

// New returns a renderer drawing images from table.
func New(table *images.Table) (*Renderer, error) {
	regular, err := draw.RegularFace(RegularSize)
	if err != nil {
		return nil, err
	}
	bold, err := draw.BoldFace(BoldSize)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		images: table,
		faces: map[string]draw.Face{
			"":        draw.DefaultFace,
			"small":   draw.DefaultFace,
			"regular": regular,
			"bold":    bold,
		},
	}, nil
}

// HasFace reports whether name is a known style face.
func (r *Renderer) HasFace(name string) bool {
	_, ok := r.faces[name]
	return ok
}

func (r *Renderer) face(name string) draw.Face {
	if f, ok := r.faces[name]; ok {
		return f
	}
	return draw.DefaultFace
}

// Render paints reg into dst, in panel coordinates. Only pixels inside reg.Rect are
// touched, and every one of them is written: the region is erased first.
func (r *Renderer) Render(dst draw.Image, reg region.Region, snap share.Snapshot) error {
	var (
		clip       = draw.Clip(dst, reg.Rect)
		ink, paper = pixel.Off, pixel.On
		face       = r.face(reg.Style.Face)
	)
	if reg.Style.Invert {
		ink, paper = paper, ink
	}

	draw.Box(clip, reg.Rect, paper)
	if reg.Style.Border {
		draw.Rectangle(clip, reg.Rect, ink)
	}

	switch reg.Kind {
	case region.TopBar:
		left := "WiFi: " + strconv.FormatUint(uint64(snap.WifiCount), 10)
		right := fmt.Sprintf("%d°F %d%%", snap.TemperatureF, snap.HumidityPct)
		baseline := centerBaseline(reg.Rect, face)
		draw.Text(clip, image.Pt(reg.Rect.Min.X+inset, baseline), face, ink, left)
		draw.Text(clip, image.Pt(reg.Rect.Max.X-inset-draw.MeasureText(face, right), baseline), face, ink, right)
		draw.HorizontalLine(clip, reg.Rect.Min.X, reg.Rect.Max.Y-1, reg.Rect.Dx(), ink)

	case region.Clock:
		draw.Text(clip, image.Pt(reg.Rect.Min.X+2*inset, centerBaseline(reg.Rect, face)), face, ink, snap.Clock)

	case region.Image:
		if r.images == nil {
			return fmt.Errorf("render: %s: no image table", reg.Name)
		}
		id := images.FromOrdinal(snap.Image)
		draw.Bitmap(clip, id.Anchor(), r.images.Image(id))
		if reg.Style.Invert {
			invert(clip, r.images.Bounds(id))
		}

	case region.Name:
		draw.TextBox(clip, reg.Rect, inset, face, ink, reg.Style.Lines...)

	case region.NetworkHeader:
		title := "Networks"
		if len(reg.Style.Lines) > 0 {
			title = reg.Style.Lines[0]
		}
		baseline := centerBaseline(reg.Rect, face)
		draw.Text(clip, image.Pt(reg.Rect.Min.X+inset, baseline), face, ink, title)
		total := strconv.FormatUint(uint64(snap.WifiCount), 10)
		draw.Text(clip, image.Pt(reg.Rect.Max.X-inset-draw.MeasureText(face, total), baseline), face, ink, total)

	case region.NetworkList:
		lines := snap.Networks
		if len(lines) == 0 {
			lines = []string{"scanning..."}
		}
		draw.TextBox(clip, reg.Rect, inset, face, ink, lines...)

	default:
		return fmt.Errorf("render: %s: unsupported kind %s", reg.Name, reg.Kind)
	}
	return nil
}

// centerBaseline returns the baseline that vertically centers a line of face in r.
func centerBaseline(r image.Rectangle, face draw.Face) int {
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	return r.Min.Y + (r.Dy()-ascent-descent)/2 + ascent
}

func invert(dst draw.Image, r image.Rectangle) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := pixel.MonoModel.Convert(dst.At(x, y)).(pixel.Mono)
			dst.Set(x, y, c.Invert())
		}
	}
}
