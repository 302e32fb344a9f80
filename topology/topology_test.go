package topology

import (
	"math"
	"reflect"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/streets"
)

func crossingStreets() []*streets.Street {

	return []*streets.Street{
		{
			Code:         "8209802000001",
			Name:         "AVENIDA CORDOBA",
			LocalityCode: "82098020",
			DoorNumbers:  streets.DoorNumbers{StartLeft: 1, EndLeft: 101, StartRight: 2, EndRight: 102},
			Geometry:     orb.MultiLineString{{{0, 0}, {2, 0}}},
		},
		{
			Code:         "8209802000002",
			Name:         "SAN MARTIN",
			LocalityCode: "82098020",
			Geometry:     orb.MultiLineString{{{1, -1}, {1, 1}}},
		},
	}
}

func TestDeriveLocalityCrossing(t *testing.T) {

	d, errs := DeriveLocality(crossingStreets(), nil)

	if len(errs) != 0 {
		t.Fatalf("Unexpected errors, %v", errs)
	}

	if len(d.Intersections) != 1 {
		t.Fatalf("Invalid intersection count. Got %d but expected 1", len(d.Intersections))
	}

	x := d.Intersections[0]

	if x.Code != "8209802000001-8209802000002-01" {
		t.Fatalf("Invalid intersection code. Got %s", x.Code)
	}

	if x.StreetACode >= x.StreetBCode {
		t.Fatalf("Expected street A to carry the lower code. Got %s >= %s", x.StreetACode, x.StreetBCode)
	}

	if x.Geometry[0] != 1 || x.Geometry[1] != 0 {
		t.Fatalf("Invalid intersection point. Got %v but expected [1 0]", x.Geometry)
	}

	// Each street is cut once, producing two blocks apiece.

	if len(d.Blocks) != 4 {
		t.Fatalf("Invalid block count. Got %d but expected 4", len(d.Blocks))
	}

	first := d.Blocks[0]

	if first.Code != "8209802000001-01" {
		t.Fatalf("Invalid block code. Got %s", first.Code)
	}

	if first.FromIntersectionCode != "" {
		t.Fatalf("Expected open start. Got %s", first.FromIntersectionCode)
	}

	if first.ToIntersectionCode != x.Code {
		t.Fatalf("Invalid block boundary. Got %s but expected %s", first.ToIntersectionCode, x.Code)
	}
}

func TestDeriveLocalityDoorNumbers(t *testing.T) {

	d, _ := DeriveLocality(crossingStreets(), nil)

	// The first street is cut at its midpoint, so its ranges split evenly.

	first := d.Blocks[0]
	second := d.Blocks[1]

	if first.DoorNumbers.StartLeft != 1 || first.DoorNumbers.EndLeft != 51 {
		t.Fatalf("Invalid left range for first block. Got %+v", first.DoorNumbers)
	}

	if second.DoorNumbers.StartLeft != 51 || second.DoorNumbers.EndLeft != 101 {
		t.Fatalf("Invalid left range for second block. Got %+v", second.DoorNumbers)
	}

	// The second street has no door numbers and its blocks stay zero.

	third := d.Blocks[2]

	if third.DoorNumbers.StartLeft != 0 || third.DoorNumbers.EndLeft != 0 {
		t.Fatalf("Expected empty range. Got %+v", third.DoorNumbers)
	}
}

func TestDeriveLocalityDangling(t *testing.T) {

	lone := []*streets.Street{
		{
			Code:         "8209802000001",
			Name:         "AVENIDA CORDOBA",
			LocalityCode: "82098020",
			Geometry:     orb.MultiLineString{{{0, 0}, {2, 0}}},
		},
	}

	d, errs := DeriveLocality(lone, nil)

	if len(errs) != 0 {
		t.Fatalf("Unexpected errors, %v", errs)
	}

	if len(d.Intersections) != 0 {
		t.Fatalf("Invalid intersection count. Got %d but expected 0", len(d.Intersections))
	}

	if len(d.Blocks) != 1 {
		t.Fatalf("Invalid block count. Got %d but expected 1", len(d.Blocks))
	}

	b := d.Blocks[0]

	if b.Code != "8209802000001-01" {
		t.Fatalf("Invalid block code. Got %s", b.Code)
	}

	if b.FromIntersectionCode != "" || b.ToIntersectionCode != "" {
		t.Fatalf("Expected open ends. Got %s and %s", b.FromIntersectionCode, b.ToIntersectionCode)
	}

	if !reflect.DeepEqual(b.Geometry, lone[0].Geometry) {
		t.Fatalf("Expected block to carry the full street geometry")
	}
}

// nearCrossingStreets has the second street crossing the first twice, a
// hair apart. Within the snap tolerance both crossings are the same
// real-world intersection.
func nearCrossingStreets() []*streets.Street {

	return []*streets.Street{
		{
			Code:         "8209802000001",
			Name:         "AVENIDA CORDOBA",
			LocalityCode: "82098020",
			Geometry:     orb.MultiLineString{{{0, 0}, {1, 0}}},
		},
		{
			Code:         "8209802000002",
			Name:         "SAN MARTIN",
			LocalityCode: "82098020",
			Geometry: orb.MultiLineString{
				{{0.5, -1}, {0.5, 1}},
				{{0.5000001, 1}, {0.5000001, -1}},
			},
		},
	}
}

func TestDeriveLocalitySnapMerging(t *testing.T) {

	d, errs := DeriveLocality(nearCrossingStreets(), nil)

	if len(errs) != 0 {
		t.Fatalf("Unexpected errors, %v", errs)
	}

	if len(d.Intersections) != 1 {
		t.Fatalf("Invalid intersection count. Got %d but expected 1", len(d.Intersections))
	}
}

func TestSnapToleranceSweep(t *testing.T) {

	// The two crossings sit about 1e-7 apart. Tolerances below that keep
	// them distinct; tolerances above merge them.
	cases := map[float64]int{
		1e-9: 2,
		1e-8: 2,
		1e-6: 1,
		1e-3: 1,
	}

	for snap, expected := range cases {

		opts := &Options{
			SnapTolerance:  snap,
			MinBlockLength: 5e-5,
		}

		d, errs := DeriveLocality(nearCrossingStreets(), opts)

		if len(errs) != 0 {
			t.Fatalf("Unexpected errors with tolerance %v, %v", snap, errs)
		}

		if len(d.Intersections) != expected {
			t.Fatalf("Invalid intersection count with tolerance %v. Got %d but expected %d", snap, len(d.Intersections), expected)
		}
	}
}

func gridStreets() []*streets.Street {

	return []*streets.Street{
		{
			Code:         "8209802000001",
			Name:         "AVENIDA CORDOBA",
			LocalityCode: "82098020",
			DoorNumbers:  streets.DoorNumbers{StartLeft: 1, EndLeft: 101, StartRight: 2, EndRight: 102},
			Geometry:     orb.MultiLineString{{{0, 0}, {2, 0}}},
		},
		{
			Code:         "8209802000002",
			Name:         "SANTA FE",
			LocalityCode: "82098020",
			Geometry:     orb.MultiLineString{{{0, 1}, {2, 1}}},
		},
		{
			Code:         "8209802000003",
			Name:         "SAN MARTIN",
			LocalityCode: "82098020",
			Geometry:     orb.MultiLineString{{{0.5, -0.5}, {0.5, 1.5}}},
		},
	}
}

func TestDeriveLocalityTunableSweep(t *testing.T) {

	snaps := []float64{1e-9, 1e-6, 1e-3, 1e-1}
	min_lengths := []float64{1e-9, 1e-3, 1e-1, 0.6}

	for _, snap := range snaps {

		for _, min_length := range min_lengths {

			opts := &Options{
				SnapTolerance:  snap,
				MinBlockLength: min_length,
			}

			d, errs := DeriveLocality(gridStreets(), opts)

			if len(errs) != 0 {
				t.Fatalf("Unexpected errors with snap %v and min length %v, %v", snap, min_length, errs)
			}

			if len(d.Intersections) != 2 {
				t.Fatalf("Invalid intersection count with snap %v and min length %v. Got %d but expected 2", snap, min_length, len(d.Intersections))
			}

			// Whatever the tunables, every street's blocks cover it end to
			// end with nothing lost to merging.

			totals := make(map[string]float64)

			for _, b := range d.Blocks {
				totals[b.StreetCode] = totals[b.StreetCode] + planar.Length(b.Geometry)
			}

			for _, st := range gridStreets() {

				want := planar.Length(st.Geometry)
				got := totals[st.Code]

				if math.Abs(got-want) > 1e-9 {
					t.Fatalf("Invalid block coverage for %s with snap %v and min length %v. Got %v but expected %v", st.Code, snap, min_length, got, want)
				}
			}
		}
	}
}

func TestDeriveLocalityEndIntersections(t *testing.T) {

	// Both crossings sit within the minimum block length of the first
	// street's extremities; the stubs merge away but the surviving block
	// keeps the intersection codes on its boundaries.
	ends := []*streets.Street{
		{
			Code:         "8209802000001",
			Name:         "AVENIDA CORDOBA",
			LocalityCode: "82098020",
			Geometry:     orb.MultiLineString{{{0, 0}, {2, 0}}},
		},
		{
			Code:         "8209802000002",
			Name:         "SAN MARTIN",
			LocalityCode: "82098020",
			Geometry:     orb.MultiLineString{{{0.0001, -1}, {0.0001, 1}}},
		},
		{
			Code:         "8209802000003",
			Name:         "BELGRANO",
			LocalityCode: "82098020",
			Geometry:     orb.MultiLineString{{{1.9999, -1}, {1.9999, 1}}},
		},
	}

	opts := &Options{
		SnapTolerance:  1e-5,
		MinBlockLength: 0.001,
	}

	d, errs := DeriveLocality(ends, opts)

	if len(errs) != 0 {
		t.Fatalf("Unexpected errors, %v", errs)
	}

	if len(d.Intersections) != 2 {
		t.Fatalf("Invalid intersection count. Got %d but expected 2", len(d.Intersections))
	}

	first_blocks := make([]*Block, 0)

	for _, b := range d.Blocks {

		if b.StreetCode == "8209802000001" {
			first_blocks = append(first_blocks, b)
		}
	}

	if len(first_blocks) != 1 {
		t.Fatalf("Invalid block count for first street. Got %d but expected 1", len(first_blocks))
	}

	b := first_blocks[0]

	if b.FromIntersectionCode != "8209802000001-8209802000002-01" {
		t.Fatalf("Invalid from boundary. Got '%s' but expected '8209802000001-8209802000002-01'", b.FromIntersectionCode)
	}

	if b.ToIntersectionCode != "8209802000001-8209802000003-01" {
		t.Fatalf("Invalid to boundary. Got '%s' but expected '8209802000001-8209802000003-01'", b.ToIntersectionCode)
	}

	if math.Abs(planar.Length(b.Geometry)-2) > 1e-9 {
		t.Fatalf("Expected block to span the whole street. Got length %v", planar.Length(b.Geometry))
	}
}

func TestDeriveLocalityFailed(t *testing.T) {

	broken := []*streets.Street{
		{
			Code:         "8209802000001",
			Name:         "AVENIDA CORDOBA",
			LocalityCode: "82098020",
			Geometry:     orb.MultiLineString{},
		},
	}

	d, errs := DeriveLocality(broken, nil)

	if len(errs) != 1 {
		t.Fatalf("Invalid error count. Got %d but expected 1", len(errs))
	}

	if !georef.IsTopologyDerivationFailed(errs[0]) {
		t.Fatalf("Expected TopologyDerivationFailed error. Got %v", errs[0])
	}

	if len(d.Intersections) != 0 || len(d.Blocks) != 0 {
		t.Fatalf("Expected empty derivation")
	}
}

func TestDeriveLocalityDeterministic(t *testing.T) {

	first, _ := DeriveLocality(crossingStreets(), nil)
	second, _ := DeriveLocality(crossingStreets(), nil)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Expected identical derivations for identical input")
	}
}

func TestSegmentIntersectionParallel(t *testing.T) {

	_, _, _, ok := segmentIntersection(
		orb.Point{0, 0}, orb.Point{1, 0},
		orb.Point{0, 1}, orb.Point{1, 1},
	)

	if ok {
		t.Fatalf("Expected no intersection for parallel segments")
	}
}

func TestSegmentIntersectionCollinear(t *testing.T) {

	pt, t_pos, _, ok := segmentIntersection(
		orb.Point{0, 0}, orb.Point{2, 0},
		orb.Point{1, 0}, orb.Point{3, 0},
	)

	if !ok {
		t.Fatalf("Expected collinear overlap to intersect")
	}

	// The midpoint of the shared extent [1, 2].

	if pt[0] != 1.5 || pt[1] != 0 {
		t.Fatalf("Invalid overlap point. Got %v but expected [1.5 0]", pt)
	}

	if t_pos != 0.75 {
		t.Fatalf("Invalid parameter. Got %v but expected 0.75", t_pos)
	}
}

func TestSubstring(t *testing.T) {

	st := &streets.Street{
		Code:     "8209802000001",
		Geometry: orb.MultiLineString{{{0, 0}, {2, 0}}},
	}

	mls := substring(st, 0.5, 1.5)

	if len(mls) != 1 {
		t.Fatalf("Invalid part count. Got %d but expected 1", len(mls))
	}

	expected := orb.LineString{{0.5, 0}, {1.5, 0}}

	if !reflect.DeepEqual(mls[0], expected) {
		t.Fatalf("Invalid substring. Got %v but expected %v", mls[0], expected)
	}
}

func TestSubstringDisjointParts(t *testing.T) {

	st := &streets.Street{
		Code: "8209802000001",
		Geometry: orb.MultiLineString{
			{{0, 0}, {1, 0}},
			{{5, 0}, {6, 0}},
		},
	}

	// A range spanning the gap yields two parts, never a bridge.

	mls := substring(st, 0.5, 1.5)

	if len(mls) != 2 {
		t.Fatalf("Invalid part count. Got %d but expected 2", len(mls))
	}
}
