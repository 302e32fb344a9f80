package normalize

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/georef-ar/go-georef-etl"
)

// PolygonalGeometry validates and repairs a raw polygonal geometry,
// returning it as a MultiPolygon. Unclosed rings are closed; degenerate
// and zero-area rings (collapsed self-intersections) are dropped.
// Self-intersecting rings with non-zero area pass through untouched, on
// the grounds that PostGIS and the export consumers tolerate them better
// than a rejected feature. A geometry with no surviving rings is a
// `GeometryInvalid` error.
func PolygonalGeometry(ref string, g orb.Geometry) (orb.MultiPolygon, error) {

	var mp orb.MultiPolygon

	switch geom := g.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{geom}
	case orb.MultiPolygon:
		mp = geom
	case nil:
		return nil, georef.GeometryInvalid{Ref: ref, Reason: "empty geometry"}
	default:
		return nil, georef.GeometryInvalid{Ref: ref, Reason: "expected polygonal geometry"}
	}

	cleaned := make(orb.MultiPolygon, 0, len(mp))

	for _, poly := range mp {

		rings := make(orb.Polygon, 0, len(poly))

		for _, ring := range poly {

			if len(ring) > 0 && !ring.Closed() {
				ring = append(ring, ring[0])
			}

			if len(ring) < 4 {
				continue
			}

			if math.Abs(planar.Area(ring)) == 0 {
				continue
			}

			rings = append(rings, ring)
		}

		if len(rings) == 0 {
			continue
		}

		cleaned = append(cleaned, rings)
	}

	if len(cleaned) == 0 {
		return nil, georef.GeometryInvalid{Ref: ref, Reason: "no valid rings"}
	}

	return cleaned, nil
}

// LinearGeometry validates a raw linear geometry, returning it as a
// MultiLineString. Parts with fewer than two points or zero length are
// dropped.
func LinearGeometry(ref string, g orb.Geometry) (orb.MultiLineString, error) {

	var mls orb.MultiLineString

	switch geom := g.(type) {
	case orb.LineString:
		mls = orb.MultiLineString{geom}
	case orb.MultiLineString:
		mls = geom
	case nil:
		return nil, georef.GeometryInvalid{Ref: ref, Reason: "empty geometry"}
	default:
		return nil, georef.GeometryInvalid{Ref: ref, Reason: "expected linear geometry"}
	}

	cleaned := make(orb.MultiLineString, 0, len(mls))

	for _, ls := range mls {

		if len(ls) < 2 {
			continue
		}

		if planar.Length(ls) == 0 {
			continue
		}

		cleaned = append(cleaned, ls)
	}

	if len(cleaned) == 0 {
		return nil, georef.GeometryInvalid{Ref: ref, Reason: "no valid segments"}
	}

	return cleaned, nil
}

// PlaceGeometry validates a raw locality geometry, which may be a point or
// a polygonal footprint.
func PlaceGeometry(ref string, g orb.Geometry) (orb.Geometry, error) {

	switch g.(type) {
	case orb.Point:
		return g, nil
	case orb.Polygon, orb.MultiPolygon:
		return PolygonalGeometry(ref, g)
	case nil:
		return nil, georef.GeometryInvalid{Ref: ref, Reason: "empty geometry"}
	default:
		return nil, georef.GeometryInvalid{Ref: ref, Reason: "expected point or polygonal geometry"}
	}
}
