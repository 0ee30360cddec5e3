package profile

import (
	"context"
	"fmt"

	"github.com/dpup/vprofile/internal/lib/geo"
	"github.com/dpup/vprofile/internal/logging"
	"github.com/dpup/vprofile/internal/vector"
)

// SamplerOptions controls how features are matched against the profile
type SamplerOptions struct {
	// Tolerance is the corridor half width around the profile line
	Tolerance float64
	// Layer selects the category stored with each record
	Layer int
	// With3D keeps the elevation of matched features
	With3D bool
}

// Sampler matches features against a profile line. Points are kept when they
// fall inside the corridor, lines when they cross the profile line itself.
type Sampler struct {
	line     geo.Line
	corridor geo.Ring
	opts     SamplerOptions
	results  *ResultSet
}

// NewSampler builds the corridor around line and returns a sampler that
// appends matches to results
func NewSampler(line geo.Line, opts SamplerOptions, results *ResultSet) (*Sampler, error) {
	if opts.Layer < 1 {
		return nil, fmt.Errorf("layer must be 1 or greater, got %d", opts.Layer)
	}
	corridor, err := geo.Corridor(line, opts.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("unable to build corridor: %w", err)
	}
	return &Sampler{
		line:     line.Compact(),
		corridor: corridor,
		opts:     opts,
		results:  results,
	}, nil
}

// Line returns the profile line without repeated vertices
func (s *Sampler) Line() geo.Line {
	return s.line
}

// Corridor returns the corridor outline
func (s *Sampler) Corridor() geo.Ring {
	return s.corridor
}

// Bounds returns the box any matching feature must intersect
func (s *Sampler) Bounds() geo.Bounds {
	return s.corridor.Bounds()
}

// SampleAll samples every feature in order
func (s *Sampler) SampleAll(ctx context.Context, features []vector.Feature) error {
	matched := 0
	for _, f := range features {
		n, err := s.Sample(ctx, f)
		if err != nil {
			return err
		}
		matched += n
	}
	logging.Debugw(ctx, "Sampled features", "candidates", len(features), "records", matched)
	return nil
}

// Sample tests one feature and returns the number of records it added
func (s *Sampler) Sample(ctx context.Context, f vector.Feature) (int, error) {
	cat := f.Category(s.opts.Layer)

	var hits []geo.Vertex
	switch f := f.(type) {
	case *vector.PointFeature:
		if s.corridor.Contains(f.At.X, f.At.Y) {
			hits = []geo.Vertex{f.At}
		}
	case *vector.LineFeature:
		hits = geo.Intersections(s.line, f.Line)
	default:
		return 0, fmt.Errorf("unsupported feature %T", f)
	}

	for _, v := range hits {
		r := Record{Distance: geo.DistanceAlong(s.line, v), Category: cat}
		if s.opts.With3D {
			r.Z = v.Z
		}
		if err := s.results.Append(r); err != nil {
			return 0, fmt.Errorf("unable to store sample of feature %d: %w", f.ID(), err)
		}
		logging.Debugw(ctx, "Feature matched", "fid", f.ID(), "type", f.Type(), "cat", cat, "distance", r.Distance)
	}
	return len(hits), nil
}
