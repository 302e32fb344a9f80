package provinces

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/normalize"
)

// Raw attribute layouts, keyed by source tag. The IGN layer uses its
// national nomenclature field names.
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

// CompileProvincesData reads every source in 'source_uris' and returns the
// normalized, deduplicated provinces sorted by code. Per-feature failures
// are accumulated and returned alongside the result; they do not abort the
// batch.
func CompileProvincesData(ctx context.Context, source_uris ...string) ([]*Province, []error, error) {

	type candidate struct {
		province *Province
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

			p, err := normalizeProvince(f)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				skipped = append(skipped, err)
				return nil
			}

			c, exists := by_code[p.Code]

			switch {
			case !exists:
				by_code[p.Code] = &candidate{province: p, priority: f.Priority}
			case f.Priority > c.priority:
				normalize.Backfill(&p.Name, c.province.Name)
				by_code[p.Code] = &candidate{province: p, priority: f.Priority}
			default:
				normalize.Backfill(&c.province.Name, p.Name)
			}

			return nil
		}

		err = s.IterateFeatures(ctx, cb)
		s.Close()

		if err != nil {
			return nil, nil, err
		}
	}

	lookup := make([]*Province, 0, len(by_code))

	for _, c := range by_code {
		lookup = append(lookup, c.province)
	}

	sort.Slice(lookup, func(i, j int) bool {
		return lookup[i].Code < lookup[j].Code
	})

	return lookup, skipped, nil
}

func normalizeProvince(f *georef.Feature) (*Province, error) {

	m := mappingFor(f.Source)

	code, err := normalize.Code(normalize.Str(f.Body, m.Code), georef.ProvinceCodeLength)

	if err != nil {
		return nil, fmt.Errorf("Failed to normalize province code, %v", err)
	}

	name := normalize.Str(f.Body, m.Name)

	if name == "" {
		return nil, fmt.Errorf("Missing name for province '%s'", code)
	}

	geom, err := normalize.PolygonalGeometry(code, f.Geometry)

	if err != nil {
		return nil, err
	}

	p := &Province{
		Code:     code,
		Name:     name,
		Source:   f.Source,
		Geometry: geom,
	}

	return p, nil
}
