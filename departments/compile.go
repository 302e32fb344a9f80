package departments

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/normalize"
)

var field_mappings = map[string]normalize.FieldMapping{
	"ign": {Code: "in1", Name: "nam"},
}

var default_mapping = normalize.FieldMapping{Code: "code", Name: "name"}

func mappingFor(tag string) normalize.FieldMapping {

	m, ok := field_mappings[tag]

	if ok {
		return m
	}

	return default_mapping
}

// CompileDepartmentsData reads every source in 'source_uris' and returns
// the normalized, deduplicated departments sorted by code. The province
// reference is derived from the code prefix.
func CompileDepartmentsData(ctx context.Context, source_uris ...string) ([]*Department, []error, error) {

	type candidate struct {
		department *Department
		priority   int
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

			d, err := normalizeDepartment(f)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				skipped = append(skipped, err)
				return nil
			}

			c, exists := by_code[d.Code]

			switch {
			case !exists:
				by_code[d.Code] = &candidate{department: d, priority: f.Priority}
			case f.Priority > c.priority:
				normalize.Backfill(&d.Name, c.department.Name)
				by_code[d.Code] = &candidate{department: d, priority: f.Priority}
			default:
				normalize.Backfill(&c.department.Name, d.Name)
			}

			return nil
		}

		err = s.IterateFeatures(ctx, cb)
		s.Close()

		if err != nil {
			return nil, nil, err
		}
	}

	lookup := make([]*Department, 0, len(by_code))

	for _, c := range by_code {
		lookup = append(lookup, c.department)
	}

	sort.Slice(lookup, func(i, j int) bool {
		return lookup[i].Code < lookup[j].Code
	})

	return lookup, skipped, nil
}

func normalizeDepartment(f *georef.Feature) (*Department, error) {

	m := mappingFor(f.Source)

	code, err := normalize.Code(normalize.Str(f.Body, m.Code), georef.DepartmentCodeLength)

	if err != nil {
		return nil, fmt.Errorf("Failed to normalize department code, %v", err)
	}

	name := normalize.Str(f.Body, m.Name)

	if name == "" {
		return nil, fmt.Errorf("Missing name for department '%s'", code)
	}

	geom, err := normalize.PolygonalGeometry(code, f.Geometry)

	if err != nil {
		return nil, err
	}

	d := &Department{
		Code:         code,
		Name:         name,
		ProvinceCode: code[:georef.ProvinceCodeLength],
		Source:       f.Source,
		Geometry:     geom,
	}

	return d, nil
}
