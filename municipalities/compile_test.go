package municipalities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/georef-ar/go-georef-etl/source"
)

// The low-priority source knows the category; the high-priority source
// knows the fuller name. Whichever order they arrive in, the winner keeps
// its own fields and backfills the rest from the loser.

const sourceLow string = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"code": "820196", "name": "Rosario", "category": "Municipio"},
      "geometry": {"type": "Polygon", "coordinates": [[[-60.8,-33.05],[-60.6,-33.05],[-60.6,-32.85],[-60.8,-32.85],[-60.8,-33.05]]]}
    },
    {
      "type": "Feature",
      "properties": {"code": "820287", "name": "Villa Constitución", "category": "Municipio"},
      "geometry": {"type": "Polygon", "coordinates": [[[-60.4,-33.3],[-60.3,-33.3],[-60.3,-33.2],[-60.4,-33.2],[-60.4,-33.3]]]}
    }
  ]
}`

const sourceHigh string = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"code": "820196", "name": "Municipalidad de Rosario"},
      "geometry": {"type": "Polygon", "coordinates": [[[-60.81,-33.05],[-60.6,-33.05],[-60.6,-32.85],[-60.81,-32.85],[-60.81,-33.05]]]}
    }
  ]
}`

func compileFixture(t *testing.T, first string, second string) []*Municipality {

	ctx := context.Background()

	lookup, skipped, err := CompileMunicipalitiesData(ctx, first, second)

	if err != nil {
		t.Fatalf("Failed to compile municipalities data, %v", err)
	}

	if len(skipped) != 0 {
		t.Fatalf("Invalid skipped count. Got %d but expected 0", len(skipped))
	}

	return lookup
}

func TestCompileMunicipalitiesData(t *testing.T) {

	dir := t.TempDir()

	path_low := filepath.Join(dir, "low.geojson")
	path_high := filepath.Join(dir, "high.geojson")

	err := os.WriteFile(path_low, []byte(sourceLow), 0644)

	if err != nil {
		t.Fatalf("Failed to write low-priority source, %v", err)
	}

	err = os.WriteFile(path_high, []byte(sourceHigh), 0644)

	if err != nil {
		t.Fatalf("Failed to write high-priority source, %v", err)
	}

	uri_low := fmt.Sprintf("geojson://%s?priority=1", path_low)
	uri_high := fmt.Sprintf("geojson://%s?priority=2", path_high)

	for _, uris := range [][2]string{{uri_low, uri_high}, {uri_high, uri_low}} {

		lookup := compileFixture(t, uris[0], uris[1])

		if len(lookup) != 2 {
			t.Fatalf("Invalid municipality count. Got %d but expected 2", len(lookup))
		}

		m := lookup[0]

		if m.Code != "820196" {
			t.Fatalf("Invalid first code. Got %s but expected 820196", m.Code)
		}

		if m.ProvinceCode != "82" {
			t.Fatalf("Invalid province. Got %s but expected 82", m.ProvinceCode)
		}

		// The name follows priority; the category is backfilled from the
		// source that has one.

		if m.Name != "Municipalidad de Rosario" {
			t.Fatalf("Invalid name. Got '%s' but expected 'Municipalidad de Rosario'", m.Name)
		}

		if m.Category != "Municipio" {
			t.Fatalf("Invalid category. Got '%s' but expected 'Municipio'", m.Category)
		}

		if lookup[1].Code != "820287" {
			t.Fatalf("Invalid second code. Got %s but expected 820287", lookup[1].Code)
		}
	}
}
