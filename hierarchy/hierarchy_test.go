package hierarchy

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/georef-ar/go-georef-etl"
)

func box(minx float64, miny float64, maxx float64, maxy float64) orb.MultiPolygon {

	return orb.MultiPolygon{
		{
			{{minx, miny}, {maxx, miny}, {maxx, maxy}, {minx, maxy}, {minx, miny}},
		},
	}
}

func TestLinkGreatestOverlap(t *testing.T) {

	parents := []Entity{
		{Code: "82007", Geometry: box(0, 0, 10, 10)},
		{Code: "82014", Geometry: box(10, 0, 20, 10)},
	}

	// Mostly inside 82014, leaking a little into 82007.
	children := []Entity{
		{Code: "820196", Geometry: box(9, 2, 18, 8)},
	}

	assigned, orphans := Link(georef.MunicipalityKind, children, parents, nil)

	if len(orphans) != 0 {
		t.Fatalf("Unexpected orphans, %v", orphans)
	}

	parent, ok := assigned["820196"]

	if !ok {
		t.Fatalf("Expected child to be assigned")
	}

	if parent != "82014" {
		t.Fatalf("Invalid parent. Got %s but expected 82014", parent)
	}
}

func TestLinkGridSizeSweep(t *testing.T) {

	parents := []Entity{
		{Code: "82007", Geometry: box(0, 0, 10, 10)},
		{Code: "82014", Geometry: box(10, 0, 20, 10)},
	}

	// Mostly inside 82014; the winner holds at every grid resolution.
	children := []Entity{
		{Code: "820196", Geometry: box(9.1, 2.1, 17.9, 7.9)},
	}

	for _, grid := range []int{4, 8, 16, 32, 64} {

		opts := &Options{GridSize: grid}

		assigned, orphans := Link(georef.MunicipalityKind, children, parents, opts)

		if len(orphans) != 0 {
			t.Fatalf("Unexpected orphans with grid %d, %v", grid, orphans)
		}

		if assigned["820196"] != "82014" {
			t.Fatalf("Invalid parent with grid %d. Got %s but expected 82014", grid, assigned["820196"])
		}
	}
}

func TestLinkOrphan(t *testing.T) {

	parents := []Entity{
		{Code: "82007", Geometry: box(0, 0, 10, 10)},
	}

	children := []Entity{
		{Code: "820196", Geometry: box(100, 100, 101, 101)},
	}

	assigned, orphans := Link(georef.MunicipalityKind, children, parents, nil)

	if len(assigned) != 0 {
		t.Fatalf("Unexpected assignment, %v", assigned)
	}

	if len(orphans) != 1 {
		t.Fatalf("Invalid orphan count. Got %d but expected 1", len(orphans))
	}

	if !georef.IsOrphanEntity(orphans[0]) {
		t.Fatalf("Expected OrphanEntity error. Got %v", orphans[0])
	}
}

func TestLinkTieBreak(t *testing.T) {

	// Identical parents; the lowest code wins.
	parents := []Entity{
		{Code: "82021", Geometry: box(0, 0, 10, 10)},
		{Code: "82007", Geometry: box(0, 0, 10, 10)},
	}

	children := []Entity{
		{Code: "820196", Geometry: box(2, 2, 8, 8)},
	}

	assigned, _ := Link(georef.MunicipalityKind, children, parents, nil)

	if assigned["820196"] != "82007" {
		t.Fatalf("Invalid tie-break. Got %s but expected 82007", assigned["820196"])
	}
}

func TestLinkPointChild(t *testing.T) {

	parents := []Entity{
		{Code: "82007", Geometry: box(0, 0, 10, 10)},
	}

	children := []Entity{
		{Code: "82098020", Geometry: orb.Point{5, 5}},
	}

	assigned, orphans := Link(georef.LocalityKind, children, parents, nil)

	if len(orphans) != 0 {
		t.Fatalf("Unexpected orphans, %v", orphans)
	}

	if assigned["82098020"] != "82007" {
		t.Fatalf("Invalid parent for point child. Got %s but expected 82007", assigned["82098020"])
	}
}

func TestLinkLineChild(t *testing.T) {

	parents := []Entity{
		{Code: "82098020", Geometry: box(0, 0, 10, 10)},
		{Code: "82098030", Geometry: box(10, 0, 20, 10)},
	}

	children := []Entity{
		{Code: "street-1", Geometry: orb.MultiLineString{{{11, 5}, {19, 5}}}},
	}

	assigned, orphans := Link(georef.StreetKind, children, parents, nil)

	if len(orphans) != 0 {
		t.Fatalf("Unexpected orphans, %v", orphans)
	}

	if assigned["street-1"] != "82098030" {
		t.Fatalf("Invalid parent for line child. Got %s but expected 82098030", assigned["street-1"])
	}
}
