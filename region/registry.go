package region

import (
	"fmt"
	"image"

	"github.com/BeatGlow/badge/screen"
)

// Registry is an immutable, validated list of regions. Registry order is draw order.
type Registry struct {
	bounds  image.Rectangle
	regions []Region
	byName  map[string]int
}

// NewRegistry validates the regions against the panel bounds. Vertical edges must be
// multiples of align (the panel bank size, 8 for the UC8151); align <= 1 disables the
// check. All violations wrap [ErrInvalidRegionBounds].
func NewRegistry(bounds image.Rectangle, align int, regions ...Region) (*Registry, error) {
	reg := &Registry{
		bounds:  bounds,
		regions: make([]Region, len(regions)),
		byName:  make(map[string]int, len(regions)),
	}
	copy(reg.regions, regions)

	for i, r := range reg.regions {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: region %d has no name", ErrInvalidRegionBounds, i)
		}
		if _, dup := reg.byName[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate region %q", ErrInvalidRegionBounds, r.Name)
		}
		reg.byName[r.Name] = i

		if r.Rect.Empty() || !r.Rect.In(bounds) {
			return nil, fmt.Errorf("%w: %s outside %s", ErrInvalidRegionBounds, r, bounds)
		}
		if align > 1 && (r.Rect.Min.Y%align != 0 || r.Rect.Max.Y%align != 0) {
			return nil, fmt.Errorf("%w: %s not aligned to %d pixel rows", ErrInvalidRegionBounds, r, align)
		}
		if r.Cadence < 0 {
			return nil, fmt.Errorf("%w: %s has negative cadence", ErrInvalidRegionBounds, r)
		}
		if r.Kind >= numKinds || r.Trigger >= numTriggers {
			return nil, fmt.Errorf("%w: %s has invalid kind or trigger", ErrInvalidRegionBounds, r)
		}
		for _, o := range reg.regions[:i] {
			if o.Screen == r.Screen && o.Rect.Overlaps(r.Rect) {
				return nil, fmt.Errorf("%w: %s overlaps %s", ErrInvalidRegionBounds, r, o)
			}
		}
	}
	return reg, nil
}

// Bounds is the panel the registry was validated against.
func (reg *Registry) Bounds() image.Rectangle {
	return reg.bounds
}

// Len is the number of regions.
func (reg *Registry) Len() int {
	return len(reg.regions)
}

// All returns every region in draw order.
func (reg *Registry) All() []Region {
	return append([]Region(nil), reg.regions...)
}

// Lookup returns the region called name.
func (reg *Registry) Lookup(name string) (Region, bool) {
	i, ok := reg.byName[name]
	if !ok {
		return Region{}, false
	}
	return reg.regions[i], true
}

// ForScreen returns the regions of s in draw order.
func (reg *Registry) ForScreen(s screen.Screen) []Region {
	var out []Region
	for _, r := range reg.regions {
		if r.Screen == s {
			out = append(out, r)
		}
	}
	return out
}

// DueAt returns the regions of s due at tick, in draw order. The result only
// depends on the arguments.
func (reg *Registry) DueAt(tick int, s screen.Screen, pending Pending) []Region {
	var out []Region
	for _, r := range reg.regions {
		if r.Screen == s && r.DueAt(tick, pending) {
			out = append(out, r)
		}
	}
	return out
}
