package localities

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/normalize"
)

var field_mappings = map[string]normalize.FieldMapping{
	"bahra": {Code: "cod_bahra", Name: "nombre_bah", Category: "tipo_bahra"},
}

var default_mapping = normalize.FieldMapping{Code: "code", Name: "name", Category: "category"}

func mappingFor(tag string) normalize.FieldMapping {

	m, ok := field_mappings[tag]

	if ok {
		return m
	}

	return default_mapping
}

// CompileLocalitiesData reads every source in 'source_uris' and returns the
// normalized, deduplicated localities sorted by code. The department
// reference is derived from the code prefix.
func CompileLocalitiesData(ctx context.Context, source_uris ...string) ([]*Locality, []error, error) {

	type candidate struct {
		locality *Locality
		priority int
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

			l, err := normalizeLocality(f)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				skipped = append(skipped, err)
				return nil
			}

			c, exists := by_code[l.Code]

			switch {
			case !exists:
				by_code[l.Code] = &candidate{locality: l, priority: f.Priority}
			case f.Priority > c.priority:
				normalize.Backfill(&l.Name, c.locality.Name)
				normalize.Backfill(&l.Category, c.locality.Category)
				by_code[l.Code] = &candidate{locality: l, priority: f.Priority}
			default:
				normalize.Backfill(&c.locality.Name, l.Name)
				normalize.Backfill(&c.locality.Category, l.Category)
			}

			return nil
		}

		err = s.IterateFeatures(ctx, cb)
		s.Close()

		if err != nil {
			return nil, nil, err
		}
	}

	lookup := make([]*Locality, 0, len(by_code))

	for _, c := range by_code {
		lookup = append(lookup, c.locality)
	}

	sort.Slice(lookup, func(i, j int) bool {
		return lookup[i].Code < lookup[j].Code
	})

	return lookup, skipped, nil
}

func normalizeLocality(f *georef.Feature) (*Locality, error) {

	m := mappingFor(f.Source)

	code, err := normalize.Code(normalize.Str(f.Body, m.Code), georef.LocalityCodeLength)

	if err != nil {
		return nil, fmt.Errorf("Failed to normalize locality code, %v", err)
	}

	name := normalize.Str(f.Body, m.Name)

	if name == "" {
		return nil, fmt.Errorf("Missing name for locality '%s'", code)
	}

	geom, err := normalize.PlaceGeometry(code, f.Geometry)

	if err != nil {
		return nil, err
	}

	l := &Locality{
		Code:           code,
		Name:           name,
		Category:       normalize.Str(f.Body, m.Category),
		DepartmentCode: code[:georef.DepartmentCodeLength],
		Source:         f.Source,
		Geometry:       geom,
	}

	return l, nil
}
