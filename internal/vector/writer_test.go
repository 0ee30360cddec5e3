package vector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/vprofile/internal/lib/geo"
)

var (
	profileLine = geo.Line{{X: 0, Y: 0}, {X: 10, Y: 0}}
	profileRing = geo.Ring{{X: 0, Y: 1}, {X: 0, Y: -1}, {X: 10, Y: -1}, {X: 10, Y: 1}, {X: 0, Y: 1}}
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("KML")
	require.NoError(t, err)
	assert.Equal(t, FormatKML, f)
	assert.Equal(t, ".kml", f.Ext())

	f, err = ParseFormat("geojson")
	require.NoError(t, err)
	assert.Equal(t, FormatGeoJSON, f)

	_, err = ParseFormat("shp")
	assert.Error(t, err)
}

func TestWriter_KML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.kml")
	w, err := Create("profile", path, FormatKML)
	require.NoError(t, err)

	w.WriteLine(profileLine, Categories{1: 1})
	w.WriteBoundary(profileRing)
	require.NoError(t, w.Build())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "<LineString>")
	assert.Contains(t, doc, "<Polygon>")
	assert.Contains(t, doc, "cat 1")
}

func TestWriter_GeoJSONReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.geojson")
	w, err := Create("profile", path, FormatGeoJSON)
	require.NoError(t, err)

	w.WriteLine(profileLine, Categories{1: 1})
	w.WriteBoundary(profileRing)
	require.NoError(t, w.Build())
	require.NoError(t, w.Close())

	ds, err := Open("profile", path)
	require.NoError(t, err)
	lines := ds.Lines(1, []int{1})
	require.Len(t, lines, 1, "the boundary has no category and is not a line")
	assert.Equal(t, profileLine, lines[0].Line)
}

func TestWriter_BuildRejectsBadGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.kml")
	w, err := Create("bad", path, FormatKML)
	require.NoError(t, err)

	w.WriteBoundary(geo.Ring{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}})
	assert.Error(t, w.Build())

	err = w.Close()
	assert.ErrorIs(t, err, ErrNotBuilt)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "an unbuilt dataset leaves no file")
}

func TestWriter_CreateFailsEarly(t *testing.T) {
	_, err := Create("profile", filepath.Join(t.TempDir(), "missing", "profile.kml"), FormatKML)
	assert.Error(t, err)

	_, err = Create("bad name", filepath.Join(t.TempDir(), "x.kml"), FormatKML)
	assert.Error(t, err)
}
