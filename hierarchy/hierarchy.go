// Package hierarchy assigns parent-child containment between adjacent
// administrative levels, and between streets and their containing locality.
// Assignment is by greatest spatial overlap rather than exact containment,
// to absorb slivers and boundary drift between independently-sourced
// layers.
package hierarchy

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/georef-ar/go-georef-etl"
)

// Entity is the minimal shape the linker needs from either side of a
// parent-child relationship.
type Entity struct {
	Code     string
	Geometry orb.Geometry
}

type Options struct {
	// GridSize controls the resolution of the sampling grid used to score
	// polygon overlap. The default is 16 (a 16x16 grid over the child's
	// bound).
	GridSize int
}

func DefaultOptions() *Options {
	return &Options{
		GridSize: 16,
	}
}

// Link assigns each child the parent whose geometry overlaps it most,
// breaking ties by parent code ascending. The result maps child codes to
// parent codes. Children overlapping no parent are reported as
// `OrphanEntity` errors and omitted from the map; the caller decides
// whether to force-include them.
func Link(kind georef.Kind, children []Entity, parents []Entity, opts *Options) (map[string]string, []error) {

	if opts == nil {
		opts = DefaultOptions()
	}

	sorted_parents := make([]Entity, len(parents))
	copy(sorted_parents, parents)

	sort.Slice(sorted_parents, func(i, j int) bool {
		return sorted_parents[i].Code < sorted_parents[j].Code
	})

	parent_bounds := make([]orb.Bound, len(sorted_parents))

	for i, p := range sorted_parents {
		parent_bounds[i] = p.Geometry.Bound()
	}

	assigned := make(map[string]string)
	orphans := make([]error, 0)

	for _, child := range children {

		probes := probePoints(child.Geometry, opts.GridSize)

		best_score := 0
		best_code := ""

		child_bound := child.Geometry.Bound()

		for i, parent := range sorted_parents {

			if !child_bound.Intersects(parent_bounds[i]) {
				continue
			}

			score := overlapScore(probes, parent.Geometry)

			// Ties keep the lowest parent code, which was visited first.
			if score > best_score {
				best_score = score
				best_code = parent.Code
			}
		}

		if best_score == 0 {
			orphans = append(orphans, georef.OrphanEntity{Kind: kind, Code: child.Code})
			continue
		}

		assigned[child.Code] = best_code
	}

	return assigned, orphans
}

func overlapScore(probes []orb.Point, parent orb.Geometry) int {

	score := 0

	for _, pt := range probes {

		if containsPoint(parent, pt) {
			score = score + 1
		}
	}

	return score
}

func containsPoint(g orb.Geometry, pt orb.Point) bool {

	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	default:
		return false
	}
}

// probePoints derives a deterministic set of sample points representing the
// child geometry. Polygon children are sampled on a regular grid over their
// bound, keeping only points inside the child; line children contribute
// their vertices and segment midpoints; point children contribute
// themselves.
func probePoints(g orb.Geometry, grid int) []orb.Point {

	if grid < 2 {
		grid = 2
	}

	switch geom := g.(type) {

	case orb.Point:
		return []orb.Point{geom}

	case orb.Polygon:
		return probePolygon(orb.MultiPolygon{geom}, grid)

	case orb.MultiPolygon:
		return probePolygon(geom, grid)

	case orb.LineString:
		return probeLines(orb.MultiLineString{geom})

	case orb.MultiLineString:
		return probeLines(geom)

	default:
		return nil
	}
}

func probePolygon(mp orb.MultiPolygon, grid int) []orb.Point {

	bound := mp.Bound()

	dx := (bound.Max[0] - bound.Min[0]) / float64(grid-1)
	dy := (bound.Max[1] - bound.Min[1]) / float64(grid-1)

	probes := make([]orb.Point, 0, grid*grid)

	for i := 0; i < grid; i++ {

		for j := 0; j < grid; j++ {

			pt := orb.Point{
				bound.Min[0] + float64(i)*dx,
				bound.Min[1] + float64(j)*dy,
			}

			if planar.MultiPolygonContains(mp, pt) {
				probes = append(probes, pt)
			}
		}
	}

	// Degenerate bounds (a very small polygon) can defeat the grid, so
	// always keep at least the ring vertices.
	if len(probes) == 0 {

		for _, poly := range mp {

			if len(poly) > 0 {
				probes = append(probes, poly[0]...)
			}
		}
	}

	return probes
}

func probeLines(mls orb.MultiLineString) []orb.Point {

	probes := make([]orb.Point, 0)

	for _, ls := range mls {

		for i, pt := range ls {

			probes = append(probes, pt)

			if i > 0 {
				prev := ls[i-1]
				probes = append(probes, orb.Point{(prev[0] + pt[0]) / 2, (prev[1] + pt[1]) / 2})
			}
		}
	}

	return probes
}
