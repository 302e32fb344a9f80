package localities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	_ "github.com/georef-ar/go-georef-etl/source"
)

const sourceBAHRA string = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"cod_bahra": "82098020", "nombre_bah": "Rosario", "tipo_bahra": "LS"},
      "geometry": {"type": "Point", "coordinates": [-60.64, -32.95]}
    },
    {
      "type": "Feature",
      "properties": {"cod_bahra": "82098030", "nombre_bah": "Funes", "tipo_bahra": "LS"},
      "geometry": {"type": "Polygon", "coordinates": [[[-60.85,-32.93],[-60.78,-32.93],[-60.78,-32.88],[-60.85,-32.88],[-60.85,-32.93]]]}
    },
    {
      "type": "Feature",
      "properties": {"cod_bahra": "820980200000", "nombre_bah": "Overflow", "tipo_bahra": "E"},
      "geometry": {"type": "Point", "coordinates": [-60.0, -33.0]}
    }
  ]
}`

func TestCompileLocalitiesData(t *testing.T) {

	ctx := context.Background()

	dir := t.TempDir()

	path := filepath.Join(dir, "bahra.geojson")

	err := os.WriteFile(path, []byte(sourceBAHRA), 0644)

	if err != nil {
		t.Fatalf("Failed to write source, %v", err)
	}

	uri := fmt.Sprintf("geojson://%s?tag=bahra&priority=1", path)

	lookup, skipped, err := CompileLocalitiesData(ctx, uri)

	if err != nil {
		t.Fatalf("Failed to compile localities data, %v", err)
	}

	if len(lookup) != 2 {
		t.Fatalf("Invalid locality count. Got %d but expected 2", len(lookup))
	}

	// The over-long code is rejected.

	if len(skipped) != 1 {
		t.Fatalf("Invalid skipped count. Got %d but expected 1", len(skipped))
	}

	l := lookup[0]

	if l.Code != "82098020" {
		t.Fatalf("Invalid first code. Got %s but expected 82098020", l.Code)
	}

	// The department reference is the code prefix.

	if l.DepartmentCode != "82098" {
		t.Fatalf("Invalid department. Got %s but expected 82098", l.DepartmentCode)
	}

	if l.Category != "LS" {
		t.Fatalf("Invalid category. Got '%s' but expected 'LS'", l.Category)
	}

	if l.Source != "bahra" {
		t.Fatalf("Invalid source tag. Got '%s' but expected 'bahra'", l.Source)
	}

	// Point and polygonal footprints are both accepted.

	_, is_point := l.Geometry.(orb.Point)

	if !is_point {
		t.Fatalf("Expected point geometry for %s. Got %T", l.Code, l.Geometry)
	}

	_, is_polygonal := lookup[1].Geometry.(orb.MultiPolygon)

	if !is_polygonal {
		t.Fatalf("Expected polygonal geometry for %s. Got %T", lookup[1].Code, lookup[1].Geometry)
	}
}
