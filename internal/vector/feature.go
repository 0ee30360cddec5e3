package vector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dpup/vprofile/internal/lib/geo"
)

// NoCategory marks a feature without a category in the requested layer
const NoCategory = -1

// GeometryType identifies the kind of a feature
type GeometryType int

const (
	TypePoint GeometryType = 1 << iota
	TypeLine
)

func (t GeometryType) String() string {
	switch t {
	case TypePoint:
		return "point"
	case TypeLine:
		return "line"
	default:
		return fmt.Sprintf("GeometryType(%d)", int(t))
	}
}

// TypeMask selects geometry types during a scan
type TypeMask int

// AllTypes matches point and line features
const AllTypes = TypeMask(TypePoint) | TypeMask(TypeLine)

// Has reports whether the mask selects t
func (m TypeMask) Has(t GeometryType) bool {
	return int(m)&int(t) != 0
}

func (m TypeMask) String() string {
	var names []string
	for _, t := range []GeometryType{TypePoint, TypeLine} {
		if m.Has(t) {
			names = append(names, t.String())
		}
	}
	return strings.Join(names, ",")
}

// ParseTypes parses a comma separated list of geometry type names
func ParseTypes(s string) (TypeMask, error) {
	var mask TypeMask
	for _, name := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "point":
			mask |= TypeMask(TypePoint)
		case "line":
			mask |= TypeMask(TypeLine)
		case "":
		default:
			return 0, fmt.Errorf("unsupported feature type %q", name)
		}
	}
	if mask == 0 {
		return 0, fmt.Errorf("no feature type selected in %q", s)
	}
	return mask, nil
}

// Categories maps a layer number to the feature's category in that layer
type Categories map[int]int

// Get returns the category in layer, or NoCategory
func (c Categories) Get(layer int) int {
	if cat, ok := c[layer]; ok {
		return cat
	}
	return NoCategory
}

// Feature is a point or line read from a dataset. The set of
// implementations is closed: *PointFeature and *LineFeature.
type Feature interface {
	ID() int
	Type() GeometryType
	Category(layer int) int
	Bounds() geo.Bounds
	feature()
}

// PointFeature is a single vertex feature
type PointFeature struct {
	FID  int
	At   geo.Vertex
	Cats Categories
}

func (p *PointFeature) ID() int                { return p.FID }
func (p *PointFeature) Type() GeometryType     { return TypePoint }
func (p *PointFeature) Category(layer int) int { return p.Cats.Get(layer) }
func (p *PointFeature) feature()               {}

func (p *PointFeature) Bounds() geo.Bounds {
	return geo.Bounds{MinX: p.At.X, MinY: p.At.Y, MaxX: p.At.X, MaxY: p.At.Y}
}

// LineFeature is a polyline feature
type LineFeature struct {
	FID  int
	Line geo.Line
	Cats Categories
}

func (l *LineFeature) ID() int                { return l.FID }
func (l *LineFeature) Type() GeometryType     { return TypeLine }
func (l *LineFeature) Category(layer int) int { return l.Cats.Get(layer) }
func (l *LineFeature) Bounds() geo.Bounds     { return l.Line.Bounds() }
func (l *LineFeature) feature()               {}

func sortByID(features []Feature) {
	sort.Slice(features, func(i, j int) bool { return features[i].ID() < features[j].ID() })
}
