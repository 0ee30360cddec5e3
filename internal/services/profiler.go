package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"go.uber.org/multierr"

	"github.com/dpup/vprofile/internal/cache"
	"github.com/dpup/vprofile/internal/clients/attrdb"
	"github.com/dpup/vprofile/internal/config"
	"github.com/dpup/vprofile/internal/lib/geo"
	"github.com/dpup/vprofile/internal/lib/profile"
	"github.com/dpup/vprofile/internal/logging"
	"github.com/dpup/vprofile/internal/vector"
)

var (
	// ErrConfig marks invalid or conflicting options
	ErrConfig = errors.New("invalid configuration")
	// ErrCardinality marks a selection that did not match exactly what was needed
	ErrCardinality = errors.New("unexpected number of matches")
)

// Options describes a single profiling run
type Options struct {
	// Input names the dataset to sample
	Input string
	Types vector.TypeMask
	// Layer selects categories and the attribute table of Input
	Layer int
	// Where narrows the candidate features through the attribute table
	Where string

	// Exactly one profile line source must be set
	Coordinates  []float64
	Polyline     string
	ProfileMap   string
	ProfileWhere string
	ProfileLayer int

	Buffer float64

	// Output is a file path, stdout when empty or "-"
	Output    string
	Separator string
	Precision int
	NoHeader  bool
	NoZ       bool

	// MapOutput names a new dataset receiving the profile line and corridor
	MapOutput string
}

// Validate checks options that do not depend on any data
func (o Options) Validate() error {
	configErr := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
	}

	if o.Input == "" {
		return configErr("input dataset is required")
	}
	if err := vector.ValidateName(o.Input); err != nil {
		return configErr("%v", err)
	}
	if o.Types == 0 {
		return configErr("no feature type selected")
	}
	if o.Layer < 1 || o.ProfileLayer < 1 {
		return configErr("layer 0 not supported")
	}

	sources := 0
	for _, set := range []bool{len(o.Coordinates) > 0, o.Polyline != "", o.ProfileMap != ""} {
		if set {
			sources++
		}
	}
	if o.ProfileWhere != "" && o.ProfileMap == "" {
		return configErr("no profile map provided, but a where clause for it has been set")
	}
	if sources > 1 {
		return configErr("profile coordinates and a profile map are both provided, use only one of them")
	}
	if sources == 0 {
		return configErr("neither profile coordinates nor a profile map are provided")
	}
	if len(o.Coordinates) > 0 && (len(o.Coordinates) < 4 || len(o.Coordinates)%2 != 0) {
		return configErr("at least profile start and end coordinates are required")
	}
	if o.ProfileMap != "" {
		if err := vector.ValidateName(o.ProfileMap); err != nil {
			return configErr("%v", err)
		}
	}

	if math.IsNaN(o.Buffer) || o.Buffer < 0 {
		return configErr("tolerance value can not be less than 0")
	}
	if o.Separator == "" {
		return configErr("separator must not be empty")
	}
	if o.Precision < 0 || o.Precision > profile.MaxPrecision {
		return configErr("dp must be between 0 and %d", profile.MaxPrecision)
	}
	if o.MapOutput != "" {
		if err := vector.ValidateName(o.MapOutput); err != nil {
			return configErr("%v", err)
		}
	}
	return nil
}

// Profiler runs profiles against datasets resolved through the config
type Profiler struct {
	cfg *config.Config
}

// NewProfiler creates a profiler
func NewProfiler(cfg *config.Config) *Profiler {
	return &Profiler{cfg: cfg}
}

// Run samples the input dataset along the profile line and prints the
// results to the configured output, stdout by default. Every resource
// opened along the way is closed before Run returns.
func (p *Profiler) Run(ctx context.Context, opts Options, stdout io.Writer) (err error) {
	if err := opts.Validate(); err != nil {
		return err
	}
	mapFormat, err := vector.ParseFormat(p.cfg.Output.MapFormat)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	link, hasLink := p.cfg.Link(opts.Input, opts.Layer)
	if opts.Where != "" && !hasLink {
		return fmt.Errorf("%w: no database connection defined for dataset <%s> layer %d, but a where clause is provided",
			ErrConfig, opts.Input, opts.Layer)
	}

	var line geo.Line
	switch {
	case len(opts.Coordinates) > 0:
		line, err = geo.NewLine(opts.Coordinates)
	case opts.Polyline != "":
		line, err = geo.DecodePolyline(opts.Polyline)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	ds, err := vector.Open(opts.Input, p.cfg.DatasetPath(opts.Input))
	if err != nil {
		return err
	}

	if opts.ProfileMap != "" {
		if line, err = p.profileFromMap(ctx, opts); err != nil {
			return err
		}
	}

	with3D := !opts.NoZ && ds.Is3D()
	results := profile.NewResultSet(p.cfg.Limits.MaxResults)
	sampler, err := profile.NewSampler(line, profile.SamplerOptions{
		Tolerance: opts.Buffer,
		Layer:     opts.Layer,
		With3D:    with3D,
	}, results)
	if err != nil {
		return err
	}

	// The output file exists only once the inputs have been resolved
	out := stdout
	if opts.Output != "" && opts.Output != "-" {
		f, ferr := os.Create(opts.Output)
		if ferr != nil {
			return fmt.Errorf("unable to open file <%s>: %w", opts.Output, ferr)
		}
		defer func() { err = multierr.Append(err, f.Close()) }()
		out = f
	}

	if opts.MapOutput != "" {
		writer, werr := vector.Create(opts.MapOutput, p.cfg.OutputPath(opts.MapOutput, mapFormat.Ext()), mapFormat)
		if werr != nil {
			return werr
		}
		writer.WriteLine(sampler.Line(), vector.Categories{1: 1})
		writer.WriteBoundary(sampler.Corridor())
		defer func() {
			if err != nil {
				err = multierr.Append(err, writer.Discard())
				return
			}
			if err = writer.Build(); err != nil {
				err = multierr.Append(err, writer.Discard())
				return
			}
			if err = writer.Close(); err == nil {
				logging.Infow(ctx, "Profile line written", "dataset", opts.MapOutput, "path", writer.Path())
			}
		}()
	}

	var db *attrdb.Client
	var columns []profile.Column
	if hasLink {
		if db, err = attrdb.Open(ctx, link); err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, db.Close()) }()

		var described []attrdb.Column
		if described, err = db.Describe(ctx); err != nil {
			return err
		}
		columns = make([]profile.Column, len(described))
		for i, col := range described {
			columns[i] = profile.Column{Name: col.Name, Quoted: col.Type.Quoted()}
		}
	}

	var candidates []vector.Feature
	if opts.Where != "" {
		cats, err := db.SelectInts(ctx, opts.Where)
		if err != nil {
			return err
		}
		if len(cats) == 0 {
			return fmt.Errorf("%w: no features match the where clause <%s>", ErrCardinality, opts.Where)
		}
		candidates = ds.FeaturesByCategory(opts.Layer, cats, opts.Types)
	} else {
		candidates = ds.FeaturesInBounds(sampler.Bounds(), opts.Types)
	}
	logging.Debugw(ctx, "Scanning features", "dataset", opts.Input, "candidates", len(candidates), "of", ds.Len())

	if err := sampler.SampleAll(ctx, candidates); err != nil {
		return err
	}
	results.Sort()
	logging.Infow(ctx, "Features matching profile line", "count", results.Len())

	var lookup profile.AttributeLookup
	if db != nil {
		rows := cache.NewRowCache(db)
		defer rows.LogStats(ctx)
		lookup = rows
	}
	format := profile.FormatConfig{
		Separator: opts.Separator,
		Precision: opts.Precision,
		WithZ:     with3D,
		Header:    !opts.NoHeader,
		Quote:     p.cfg.Output.Quote,
		Columns:   columns,
	}
	if err := format.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	formatter := profile.NewFormatter(out, format, lookup)
	if err := formatter.WriteHeader(); err != nil {
		return err
	}
	return formatter.WriteRecords(ctx, results.Records())
}

// profileFromMap reads the single profile line of opts.ProfileMap. With a
// where clause the line is picked through the attribute table of
// opts.ProfileLayer; without one the map must hold exactly one line.
func (p *Profiler) profileFromMap(ctx context.Context, opts Options) (_ geo.Line, err error) {
	ds, err := vector.Open(opts.ProfileMap, p.cfg.DatasetPath(opts.ProfileMap))
	if err != nil {
		return nil, err
	}

	if opts.ProfileWhere == "" {
		lines := ds.Lines(opts.ProfileLayer, nil)
		switch {
		case len(lines) == 0:
			return nil, fmt.Errorf("%w: profile map <%s> contains no line", ErrCardinality, opts.ProfileMap)
		case len(lines) > 1:
			return nil, fmt.Errorf("%w: profile map <%s> contains more than one line, provide a where clause to select one",
				ErrCardinality, opts.ProfileMap)
		}
		return lines[0].Line, nil
	}

	link, ok := p.cfg.Link(opts.ProfileMap, opts.ProfileLayer)
	if !ok {
		return nil, fmt.Errorf("%w: no database connection defined for dataset <%s> layer %d, but a where clause is provided",
			ErrConfig, opts.ProfileMap, opts.ProfileLayer)
	}
	db, err := attrdb.Open(ctx, link)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	if _, err := db.Describe(ctx); err != nil {
		return nil, err
	}
	cats, err := db.SelectInts(ctx, opts.ProfileWhere)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: no features match the where clause <%s>", ErrCardinality, opts.ProfileWhere)
	}
	if len(cats) > 1 {
		return nil, fmt.Errorf("%w: where clause <%s> matches more than one record in table <%s>",
			ErrCardinality, opts.ProfileWhere, db.Link().Table)
	}

	lines := ds.Lines(opts.ProfileLayer, cats)
	switch {
	case len(lines) == 0:
		return nil, fmt.Errorf("%w: no line with category %d in profile map <%s>", ErrCardinality, cats[0], opts.ProfileMap)
	case len(lines) > 1:
		return nil, fmt.Errorf("%w: category %d matches more than one line in profile map <%s>", ErrCardinality, cats[0], opts.ProfileMap)
	}
	logging.Debugw(ctx, "Profile line selected", "dataset", opts.ProfileMap, "cat", cats[0], "vertices", len(lines[0].Line))
	return lines[0].Line, nil
}
