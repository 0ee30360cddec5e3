// Package vector reads point and line datasets stored as GeoJSON feature
// collections, and writes the profile geometry back out.
package vector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"

	"github.com/dhconnelly/rtreego"

	"github.com/dpup/vprofile/internal/lib/geo"
)

// ErrNotFound is returned when a dataset file does not exist
var ErrNotFound = errors.New("dataset not found")

var legalName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateName checks that name can be used as a dataset name
func ValidateName(name string) error {
	if !legalName.MatchString(name) {
		return fmt.Errorf("<%s> is an illegal dataset name", name)
	}
	return nil
}

// Dataset holds the features of one vector map in memory along with a
// spatial index and a per layer category index.
type Dataset struct {
	Name     string
	features []Feature
	is3D     bool
	rtree    *rtreego.Rtree
	cats     map[int]map[int][]int // layer -> category -> feature positions
}

// indexedFeature wraps a feature position for R-tree storage
type indexedFeature struct {
	pos    int
	bounds geo.Bounds
}

// Bounds implements rtreego.Spatial
func (f *indexedFeature) Bounds() rtreego.Rect {
	return toRect(f.bounds)
}

func toRect(b geo.Bounds) rtreego.Rect {
	// Rectangles need non-zero sides and touching rectangles do not
	// intersect, so every box is padded relative to its magnitude
	extent := math.Max(math.Max(math.Abs(b.MinX), math.Abs(b.MaxX)), math.Max(math.Abs(b.MinY), math.Abs(b.MaxY)))
	b = b.Pad(1e-9 * math.Max(1, extent))
	rect, _ := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{b.MaxX - b.MinX, b.MaxY - b.MinY})
	return rect
}

// Open reads the dataset stored at path
func Open(name, path string) (*Dataset, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, name, path)
	} else if err != nil {
		return nil, fmt.Errorf("unable to open dataset %s: %w", name, err)
	}
	defer f.Close()

	ds, err := Read(name, f)
	if err != nil {
		return nil, fmt.Errorf("unable to read dataset %s: %w", name, err)
	}
	return ds, nil
}

// Read decodes a GeoJSON FeatureCollection. Point and LineString features
// are kept, everything else is ignored.
func Read(name string, r io.Reader) (*Dataset, error) {
	var fc featureCollection
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode GeoJSON: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected a FeatureCollection, got %q", fc.Type)
	}

	ds := &Dataset{Name: name}
	for i, raw := range fc.Features {
		if raw.Geometry == nil {
			continue
		}
		cats, err := parseCategories(raw.Properties)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		fid := i + 1
		switch raw.Geometry.Type {
		case "Point":
			var pos []float64
			if err := json.Unmarshal(raw.Geometry.Coordinates, &pos); err != nil {
				return nil, fmt.Errorf("feature %d: invalid point: %w", i, err)
			}
			v, is3D, err := toVertex(pos)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			ds.is3D = ds.is3D || is3D
			ds.add(&PointFeature{FID: fid, At: v, Cats: cats})
		case "LineString":
			var coords [][]float64
			if err := json.Unmarshal(raw.Geometry.Coordinates, &coords); err != nil {
				return nil, fmt.Errorf("feature %d: invalid line: %w", i, err)
			}
			line := make(geo.Line, 0, len(coords))
			for _, pos := range coords {
				v, is3D, err := toVertex(pos)
				if err != nil {
					return nil, fmt.Errorf("feature %d: %w", i, err)
				}
				ds.is3D = ds.is3D || is3D
				line = append(line, v)
			}
			if len(line) == 0 {
				continue
			}
			ds.add(&LineFeature{FID: fid, Line: line, Cats: cats})
		}
	}

	ds.buildIndex()
	return ds, nil
}

func (d *Dataset) add(f Feature) {
	d.features = append(d.features, f)
}

func (d *Dataset) buildIndex() {
	d.rtree = rtreego.NewTree(2, 25, 50)
	d.cats = make(map[int]map[int][]int)
	for pos, f := range d.features {
		d.rtree.Insert(&indexedFeature{pos: pos, bounds: f.Bounds()})

		var cats Categories
		switch f := f.(type) {
		case *PointFeature:
			cats = f.Cats
		case *LineFeature:
			cats = f.Cats
		}
		for layer, cat := range cats {
			if d.cats[layer] == nil {
				d.cats[layer] = make(map[int][]int)
			}
			d.cats[layer][cat] = append(d.cats[layer][cat], pos)
		}
	}
}

// Is3D returns true when any vertex in the dataset carries a z value
func (d *Dataset) Is3D() bool {
	return d.is3D
}

// Len returns the number of features
func (d *Dataset) Len() int {
	return len(d.features)
}

// Features returns every feature selected by types, in file order
func (d *Dataset) Features(types TypeMask) []Feature {
	var out []Feature
	for _, f := range d.features {
		if types.Has(f.Type()) {
			out = append(out, f)
		}
	}
	return out
}

// FeaturesInBounds returns the features selected by types whose bounds
// intersect b, in file order
func (d *Dataset) FeaturesInBounds(b geo.Bounds, types TypeMask) []Feature {
	var out []Feature
	for _, spatial := range d.rtree.SearchIntersect(toRect(b)) {
		f := d.features[spatial.(*indexedFeature).pos]
		// The index pads degenerate boxes, recheck against the exact bounds
		if types.Has(f.Type()) && f.Bounds().Intersects(b) {
			out = append(out, f)
		}
	}
	sortByID(out)
	return out
}

// FeaturesByCategory returns the features selected by types that carry one
// of cats in layer, in file order
func (d *Dataset) FeaturesByCategory(layer int, cats []int, types TypeMask) []Feature {
	index := d.cats[layer]
	seen := make(map[int]bool)
	var out []Feature
	for _, cat := range cats {
		for _, pos := range index[cat] {
			f := d.features[pos]
			if seen[pos] || !types.Has(f.Type()) {
				continue
			}
			seen[pos] = true
			out = append(out, f)
		}
	}
	sortByID(out)
	return out
}

// Lines returns the line features, optionally restricted to cats in layer
// when cats is non-nil
func (d *Dataset) Lines(layer int, cats []int) []*LineFeature {
	var features []Feature
	if cats == nil {
		features = d.Features(TypeMask(TypeLine))
	} else {
		features = d.FeaturesByCategory(layer, cats, TypeMask(TypeLine))
	}
	lines := make([]*LineFeature, 0, len(features))
	for _, f := range features {
		lines = append(lines, f.(*LineFeature))
	}
	return lines
}

type featureCollection struct {
	Type     string        `json:"type"`
	Features []featureJSON `json:"features"`
}

type featureJSON struct {
	Type       string                 `json:"type"`
	Geometry   *geometryJSON          `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// geometryJSON keeps coordinates raw so that z values survive decoding
type geometryJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func toVertex(pos []float64) (geo.Vertex, bool, error) {
	switch len(pos) {
	case 2:
		return geo.Vertex{X: pos[0], Y: pos[1]}, false, nil
	case 3:
		return geo.Vertex{X: pos[0], Y: pos[1], Z: pos[2]}, true, nil
	default:
		return geo.Vertex{}, false, fmt.Errorf("position needs 2 or 3 values, got %d", len(pos))
	}
}

// parseCategories reads "cat" as the layer 1 category and "cats" as a
// layer to category object
func parseCategories(props map[string]interface{}) (Categories, error) {
	cats := Categories{}
	if v, ok := props["cat"]; ok && v != nil {
		cat, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("invalid cat: %w", err)
		}
		cats[1] = cat
	}
	if v, ok := props["cats"]; ok && v != nil {
		byLayer, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("cats must be an object, got %T", v)
		}
		for key, raw := range byLayer {
			layer, err := strconv.Atoi(key)
			if err != nil || layer < 1 {
				return nil, fmt.Errorf("invalid layer %q", key)
			}
			cat, err := toInt(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid cat for layer %d: %w", layer, err)
			}
			cats[layer] = cat
		}
	}
	return cats, nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, fmt.Errorf("%s is not an integer", n)
		}
		return i, nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}
