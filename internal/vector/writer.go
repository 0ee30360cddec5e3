package vector

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-kml/v2"
	"go.uber.org/multierr"

	"github.com/dpup/vprofile/internal/lib/geo"
)

// Format is the file format used when persisting geometry
type Format string

const (
	FormatKML     Format = "kml"
	FormatGeoJSON Format = "geojson"
)

// ParseFormat returns the format named s
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatKML, FormatGeoJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported map format %q", s)
	}
}

// Ext returns the file extension for the format
func (f Format) Ext() string {
	return "." + string(f)
}

// ErrNotBuilt is returned when a writer is closed before Build succeeded
var ErrNotBuilt = errors.New("dataset topology was not built")

type outLine struct {
	line geo.Line
	cats Categories
}

// Writer persists lines and area boundaries into a new dataset.
// Geometry is collected in memory; Build checks it and Close writes it.
type Writer struct {
	name       string
	format     Format
	file       *os.File
	lines      []outLine
	boundaries []geo.Ring
	built      bool
}

// Create makes the output file right away so that an unusable destination
// fails before any work is done
func Create(name, path string, format Format) (*Writer, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create dataset %s: %w", name, err)
	}
	return &Writer{name: name, format: format, file: file}, nil
}

// Path returns the location of the output file
func (w *Writer) Path() string {
	return w.file.Name()
}

// WriteLine adds a line feature
func (w *Writer) WriteLine(line geo.Line, cats Categories) {
	w.lines = append(w.lines, outLine{line: line, cats: cats})
	w.built = false
}

// WriteBoundary adds an area boundary without a category
func (w *Writer) WriteBoundary(ring geo.Ring) {
	w.boundaries = append(w.boundaries, ring)
	w.built = false
}

// Build checks the collected geometry: every line needs two distinct
// vertices and every boundary must be a closed ring.
func (w *Writer) Build() error {
	for i, l := range w.lines {
		if err := l.line.Validate(); err != nil {
			return fmt.Errorf("line %d of %s: %w", i+1, w.name, err)
		}
	}
	for i, r := range w.boundaries {
		if len(r) < 4 || !r.Closed() {
			return fmt.Errorf("boundary %d of %s is not a closed ring", i+1, w.name)
		}
	}
	w.built = true
	return nil
}

// Close encodes the dataset and closes the file. A writer that was never
// built leaves no file behind.
func (w *Writer) Close() error {
	if !w.built {
		return multierr.Append(fmt.Errorf("%s: %w", w.name, ErrNotBuilt), w.Discard())
	}

	var err error
	switch w.format {
	case FormatGeoJSON:
		err = w.encodeGeoJSON(w.file)
	default:
		err = w.encodeKML(w.file)
	}
	if err != nil {
		err = fmt.Errorf("unable to write dataset %s: %w", w.name, err)
	}
	return multierr.Append(err, w.file.Close())
}

// Discard closes and removes the output file without writing anything
func (w *Writer) Discard() error {
	return multierr.Combine(w.file.Close(), os.Remove(w.file.Name()))
}

func (w *Writer) encodeKML(out io.Writer) error {
	var placemarks []kml.Element
	placemarks = append(placemarks, kml.Name(w.name))
	for _, l := range w.lines {
		placemarks = append(placemarks, kml.Placemark(
			kml.Name(categoryLabel(l.cats)),
			kml.Description("line"),
			kml.LineString(kml.Coordinates(kmlCoordinates(l.line)...)),
		))
	}
	for _, r := range w.boundaries {
		placemarks = append(placemarks, kml.Placemark(
			kml.Description("boundary"),
			kml.Polygon(kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(kmlCoordinates(geo.Line(r))...)))),
		))
	}
	return kml.KML(kml.Document(placemarks...)).WriteIndent(out, "", "  ")
}

func kmlCoordinates(line geo.Line) []kml.Coordinate {
	coords := make([]kml.Coordinate, len(line))
	for i, v := range line {
		coords[i] = kml.Coordinate{Lon: v.X, Lat: v.Y, Alt: v.Z}
	}
	return coords
}

func categoryLabel(cats Categories) string {
	if cat := cats.Get(1); cat != NoCategory {
		return "cat " + strconv.Itoa(cat)
	}
	return ""
}

func (w *Writer) encodeGeoJSON(out io.Writer) error {
	fc := geojson.NewFeatureCollection()
	for _, l := range w.lines {
		ls := make(orb.LineString, len(l.line))
		for i, v := range l.line {
			ls[i] = orb.Point{v.X, v.Y}
		}
		f := geojson.NewFeature(ls)
		if cat := l.cats.Get(1); cat != NoCategory {
			f.Properties["cat"] = cat
		}
		fc.Append(f)
	}
	for _, r := range w.boundaries {
		ring := make(orb.Ring, len(r))
		for i, v := range r {
			ring[i] = orb.Point{v.X, v.Y}
		}
		fc.Append(geojson.NewFeature(orb.Polygon{ring}))
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = out.Write(append(data, '\n'))
	return err
}
