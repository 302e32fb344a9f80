package municipalities

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/normalize"
)

var field_mappings = map[string]normalize.FieldMapping{
	"ign": {Code: "in1", Name: "nam", Category: "gna"},
}

var default_mapping = normalize.FieldMapping{Code: "code", Name: "name", Category: "category"}

func mappingFor(tag string) normalize.FieldMapping {

	m, ok := field_mappings[tag]

	if ok {
		return m
	}

	return default_mapping
}

// CompileMunicipalitiesData reads every source in 'source_uris' and returns
// the normalized, deduplicated municipalities sorted by code. Department
// assignment is left to the hierarchy linker.
func CompileMunicipalitiesData(ctx context.Context, source_uris ...string) ([]*Municipality, []error, error) {

	type candidate struct {
		municipality *Municipality
		priority     int
	}

	by_code := make(map[string]*candidate)
	skipped := make([]error, 0)
	mu := new(sync.Mutex)

	for _, source_uri := range source_uris {

		s, err := georef.NewSource(ctx, source_uri)

		if err != nil {
			return nil, nil, fmt.Errorf("Failed to create source for '%s', %w", source_uri, err)
		}

		cb := func(ctx context.Context, f *georef.Feature) error {

			m, err := normalizeMunicipality(f)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				skipped = append(skipped, err)
				return nil
			}

			c, exists := by_code[m.Code]

			switch {
			case !exists:
				by_code[m.Code] = &candidate{municipality: m, priority: f.Priority}
			case f.Priority > c.priority:
				normalize.Backfill(&m.Name, c.municipality.Name)
				normalize.Backfill(&m.Category, c.municipality.Category)
				by_code[m.Code] = &candidate{municipality: m, priority: f.Priority}
			default:
				normalize.Backfill(&c.municipality.Name, m.Name)
				normalize.Backfill(&c.municipality.Category, m.Category)
			}

			return nil
		}

		err = s.IterateFeatures(ctx, cb)
		s.Close()

		if err != nil {
			return nil, nil, err
		}
	}

	lookup := make([]*Municipality, 0, len(by_code))

	for _, c := range by_code {
		lookup = append(lookup, c.municipality)
	}

	sort.Slice(lookup, func(i, j int) bool {
		return lookup[i].Code < lookup[j].Code
	})

	return lookup, skipped, nil
}

func normalizeMunicipality(f *georef.Feature) (*Municipality, error) {

	m := mappingFor(f.Source)

	code, err := normalize.Code(normalize.Str(f.Body, m.Code), georef.MunicipalityCodeLength)

	if err != nil {
		return nil, fmt.Errorf("Failed to normalize municipality code, %v", err)
	}

	name := normalize.Str(f.Body, m.Name)

	if name == "" {
		return nil, fmt.Errorf("Missing name for municipality '%s'", code)
	}

	geom, err := normalize.PolygonalGeometry(code, f.Geometry)

	if err != nil {
		return nil, err
	}

	municipality := &Municipality{
		Code:         code,
		Name:         name,
		Category:     normalize.Str(f.Body, m.Category),
		ProvinceCode: code[:georef.ProvinceCodeLength],
		Source:       f.Source,
		Geometry:     geom,
	}

	return municipality, nil
}
