package streets

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/normalize"
)

var field_mappings = map[string]normalize.FieldMapping{
	"indec": {
		Name:       "nombre",
		Category:   "tipo",
		Locality:   "localidad",
		StartLeft:  "desdei",
		StartRight: "desded",
		EndLeft:    "hastai",
		EndRight:   "hastad",
	},
}

var default_mapping = normalize.FieldMapping{
	Name:       "name",
	Category:   "category",
	Locality:   "locality_code",
	StartLeft:  "start_left",
	StartRight: "start_right",
	EndLeft:    "end_left",
	EndRight:   "end_right",
}

func mappingFor(tag string) normalize.FieldMapping {

	m, ok := field_mappings[tag]

	if ok {
		return m
	}

	return default_mapping
}

// CompileStreetRecords reads every source in 'source_uris' and returns the
// normalized raw street segments. Merging into Street entities happens in
// `BuildStreets`, after any records missing a locality code have been
// resolved spatially.
func CompileStreetRecords(ctx context.Context, source_uris ...string) ([]*Record, []error, error) {

	records := make([]*Record, 0)
	skipped := make([]error, 0)
	mu := new(sync.Mutex)

	for _, source_uri := range source_uris {

		s, err := georef.NewSource(ctx, source_uri)

		if err != nil {
			return nil, nil, fmt.Errorf("Failed to create source for '%s', %w", source_uri, err)
		}

		cb := func(ctx context.Context, f *georef.Feature) error {

			r, err := normalizeRecord(f)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				skipped = append(skipped, err)
				return nil
			}

			records = append(records, r)
			return nil
		}

		err = s.IterateFeatures(ctx, cb)
		s.Close()

		if err != nil {
			return nil, nil, err
		}
	}

	return records, skipped, nil
}

func normalizeRecord(f *georef.Feature) (*Record, error) {

	m := mappingFor(f.Source)

	name := normalize.Str(f.Body, m.Name)

	if name == "" {
		return nil, fmt.Errorf("Missing street name")
	}

	key := normalize.Key(name)

	if key == "" {
		return nil, fmt.Errorf("Street name '%s' normalizes to nothing", name)
	}

	geom, err := normalize.LinearGeometry(name, f.Geometry)

	if err != nil {
		return nil, err
	}

	r := &Record{
		Name:     name,
		Key:      key,
		Category: normalize.Str(f.Body, m.Category),
		Source:   f.Source,
		Priority: f.Priority,
		DoorNumbers: DoorNumbers{
			StartLeft:  normalize.Int(f.Body, m.StartLeft),
			StartRight: normalize.Int(f.Body, m.StartRight),
			EndLeft:    normalize.Int(f.Body, m.EndLeft),
			EndRight:   normalize.Int(f.Body, m.EndRight),
		},
		Geometry: geom,
	}

	raw_locality := normalize.Str(f.Body, m.Locality)

	if raw_locality != "" {

		code, err := normalize.Code(raw_locality, georef.LocalityCodeLength)

		if err != nil {
			return nil, fmt.Errorf("Failed to normalize locality code for street '%s', %v", name, err)
		}

		r.LocalityCode = code
	}

	return r, nil
}

// BuildStreets merges street records into Street entities keyed by
// (normalized name, locality). When the same street is present in more than
// one source the highest-priority source's geometry wins and attribute gaps
// in the winner are backfilled from the losers. Streets without a raw code
// receive a deterministic locality-prefixed code: the locality code plus a
// five-digit sequence assigned over the locality's match keys in ascending
// order.
func BuildStreets(records []*Record) ([]*Street, []error) {

	skipped := make([]error, 0)

	type group struct {
		locality string
		key      string
		records  []*Record
	}

	groups := make(map[string]*group)

	for _, r := range records {

		if r.LocalityCode == "" {
			skipped = append(skipped, georef.OrphanEntity{Kind: georef.StreetKind, Code: r.Name})
			continue
		}

		gk := r.LocalityCode + "\x00" + r.Key
		g, exists := groups[gk]

		if !exists {
			g = &group{locality: r.LocalityCode, key: r.Key}
			groups[gk] = g
		}

		g.records = append(g.records, r)
	}

	// Deterministic merge order inside each group: priority descending,
	// then source and name ascending.

	ordered := make([]*group, 0, len(groups))

	for _, g := range groups {
		ordered = append(ordered, g)
	}

	sort.Slice(ordered, func(i, j int) bool {

		if ordered[i].locality != ordered[j].locality {
			return ordered[i].locality < ordered[j].locality
		}

		return ordered[i].key < ordered[j].key
	})

	lookup := make([]*Street, 0, len(ordered))

	seq := 0
	last_locality := ""

	for _, g := range ordered {

		if g.locality != last_locality {
			seq = 0
			last_locality = g.locality
		}

		seq = seq + 1

		sort.SliceStable(g.records, func(i, j int) bool {

			if g.records[i].Priority != g.records[j].Priority {
				return g.records[i].Priority > g.records[j].Priority
			}

			if g.records[i].Source != g.records[j].Source {
				return g.records[i].Source < g.records[j].Source
			}

			return g.records[i].Name < g.records[j].Name
		})

		winner := g.records[0]

		street := &Street{
			Code:         fmt.Sprintf("%s%05d", g.locality, seq),
			Name:         winner.Name,
			Category:     winner.Category,
			LocalityCode: g.locality,
			Source:       winner.Source,
			DoorNumbers:  winner.DoorNumbers,
		}

		for _, r := range g.records {

			normalize.Backfill(&street.Category, r.Category)

			if r.Priority == winner.Priority && r.Source == winner.Source {
				street.Geometry = append(street.Geometry, r.Geometry...)
			}

			mergeDoorNumbers(&street.DoorNumbers, r.DoorNumbers)
		}

		lookup = append(lookup, street)
	}

	return lookup, skipped
}

// mergeDoorNumbers backfills zero-valued range endpoints from a
// lower-priority record.
func mergeDoorNumbers(dst *DoorNumbers, src DoorNumbers) {

	if dst.StartLeft == 0 {
		dst.StartLeft = src.StartLeft
	}

	if dst.StartRight == 0 {
		dst.StartRight = src.StartRight
	}

	if dst.EndLeft == 0 {
		dst.EndLeft = src.EndLeft
	}

	if dst.EndRight == 0 {
		dst.EndRight = src.EndRight
	}
}
