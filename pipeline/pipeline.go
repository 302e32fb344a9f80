// Package pipeline orchestrates the full normalize, link, derive, load,
// export sequence. Stages run in a fixed dependency order; a failed stage
// skips every stage depending on it while preserving stages already
// committed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/departments"
	"github.com/georef-ar/go-georef-etl/export"
	"github.com/georef-ar/go-georef-etl/hierarchy"
	"github.com/georef-ar/go-georef-etl/load"
	"github.com/georef-ar/go-georef-etl/localities"
	"github.com/georef-ar/go-georef-etl/municipalities"
	"github.com/georef-ar/go-georef-etl/provinces"
	"github.com/georef-ar/go-georef-etl/streets"
	"github.com/georef-ar/go-georef-etl/topology"
)

type Options struct {
	ProvinceSources     []string
	DepartmentSources   []string
	MunicipalitySources []string
	LocalitySources     []string
	StreetSources       []string

	// Topology tunables. Zero values fall back to topology.DefaultOptions.
	SnapTolerance  float64
	MinBlockLength float64

	// OverlapGridSize is passed to the hierarchy linker.
	OverlapGridSize int

	// ForceIncludeOrphans loads municipalities with no overlapping
	// department anyway, with a null department reference. Kinds whose
	// parent reference is mandatory are always excluded when orphaned.
	ForceIncludeOrphans bool

	ExportDir string
	Version   string
	WriteCSV  bool

	// Workers bounds the number of localities derived concurrently.
	Workers int
}

type Pipeline struct {
	manager *load.Manager
	opts    *Options
	logger  *slog.Logger
}

func NewPipeline(manager *load.Manager, opts *Options) *Pipeline {

	return &Pipeline{
		manager: manager,
		opts:    opts,
		logger:  slog.Default(),
	}
}

// Run executes every stage in dependency order and returns one summary per
// stage. The returned error is non-nil when any stage failed.
func (p *Pipeline) Run(ctx context.Context) ([]*Summary, error) {

	summaries := make([]*Summary, 0, len(georef.Kinds()))

	abort := func(from int) ([]*Summary, error) {

		kinds := georef.Kinds()

		for _, kind := range kinds[from:] {
			summaries = append(summaries, &Summary{Kind: kind, Status: StageSkipped})
		}

		return summaries, fmt.Errorf("Pipeline failed at stage %s", summaries[from-1].Kind)
	}

	s, prov := p.runProvinces(ctx)
	summaries = append(summaries, s)

	if s.Status != StageCommitted {
		return abort(1)
	}

	s, deps := p.runDepartments(ctx, prov)
	summaries = append(summaries, s)

	if s.Status != StageCommitted {
		return abort(2)
	}

	s = p.runMunicipalities(ctx, prov, deps)
	summaries = append(summaries, s)

	if s.Status != StageCommitted {
		return abort(3)
	}

	s, locs := p.runLocalities(ctx, deps)
	summaries = append(summaries, s)

	if s.Status != StageCommitted {
		return abort(4)
	}

	s, sts := p.runStreets(ctx, locs)
	summaries = append(summaries, s)

	if s.Status != StageCommitted {
		return abort(5)
	}

	inter_summary, block_summary := p.runTopology(ctx, sts)
	summaries = append(summaries, inter_summary)

	if inter_summary.Status != StageCommitted {
		summaries = append(summaries, &Summary{Kind: georef.BlockKind, Status: StageSkipped})
		return summaries, fmt.Errorf("Pipeline failed at stage %s", georef.IntersectionKind)
	}

	summaries = append(summaries, block_summary)

	if block_summary.Status != StageCommitted {
		return summaries, fmt.Errorf("Pipeline failed at stage %s", georef.BlockKind)
	}

	return summaries, nil
}

func (p *Pipeline) runProvinces(ctx context.Context) (*Summary, []*provinces.Province) {

	s := &Summary{Kind: georef.ProvinceKind, Status: StageFailed}

	items, skipped, err := provinces.CompileProvincesData(ctx, p.opts.ProvinceSources...)

	if err != nil {
		s.Err = err
		return s, nil
	}

	err = p.manager.LoadProvinces(ctx, items)

	if err != nil {
		s.Err = err
		return s, nil
	}

	err = p.export(georef.ProvinceKind, export.ProvinceFeatures(items))

	if err != nil {
		s.Err = err
		return s, nil
	}

	s.Status = StageCommitted
	s.Loaded = len(items)
	s.Skipped = len(skipped)
	s.Diagnostics = diagnostics(skipped)

	return s, items
}

func (p *Pipeline) runDepartments(ctx context.Context, prov []*provinces.Province) (*Summary, []*departments.Department) {

	s := &Summary{Kind: georef.DepartmentKind, Status: StageFailed}

	items, skipped, err := departments.CompileDepartmentsData(ctx, p.opts.DepartmentSources...)

	if err != nil {
		s.Err = err
		return s, nil
	}

	prov_codes := make(map[string]bool)

	for _, pr := range prov {
		prov_codes[pr.Code] = true
	}

	kept := make([]*departments.Department, 0, len(items))

	for _, d := range items {

		if !prov_codes[d.ProvinceCode] {
			skipped = append(skipped, georef.OrphanEntity{Kind: georef.DepartmentKind, Code: d.Code})
			continue
		}

		kept = append(kept, d)
	}

	err = p.manager.LoadDepartments(ctx, kept)

	if err != nil {
		s.Err = err
		return s, nil
	}

	err = p.export(georef.DepartmentKind, export.DepartmentFeatures(kept))

	if err != nil {
		s.Err = err
		return s, nil
	}

	s.Status = StageCommitted
	s.Loaded = len(kept)
	s.Skipped = len(skipped)
	s.Diagnostics = diagnostics(skipped)

	return s, kept
}

func (p *Pipeline) runMunicipalities(ctx context.Context, prov []*provinces.Province, deps []*departments.Department) *Summary {

	s := &Summary{Kind: georef.MunicipalityKind, Status: StageFailed}

	items, skipped, err := municipalities.CompileMunicipalitiesData(ctx, p.opts.MunicipalitySources...)

	if err != nil {
		s.Err = err
		return s
	}

	prov_codes := make(map[string]bool)

	for _, pr := range prov {
		prov_codes[pr.Code] = true
	}

	children := make([]hierarchy.Entity, len(items))

	for i, m := range items {
		children[i] = hierarchy.Entity{Code: m.Code, Geometry: m.Geometry}
	}

	parents := make([]hierarchy.Entity, len(deps))

	for i, d := range deps {
		parents[i] = hierarchy.Entity{Code: d.Code, Geometry: d.Geometry}
	}

	assigned, orphans := hierarchy.Link(georef.MunicipalityKind, children, parents, p.linkOptions())

	kept, link_skipped := keepMunicipalities(items, prov_codes, assigned, orphans, p.opts.ForceIncludeOrphans)
	skipped = append(skipped, link_skipped...)

	err = p.manager.LoadMunicipalities(ctx, kept)

	if err != nil {
		s.Err = err
		return s
	}

	err = p.export(georef.MunicipalityKind, export.MunicipalityFeatures(kept))

	if err != nil {
		s.Err = err
		return s
	}

	s.Status = StageCommitted
	s.Loaded = len(kept)
	s.Skipped = len(skipped)
	s.Diagnostics = diagnostics(skipped)

	return s
}

// keepMunicipalities applies province membership and department assignment
// to the compiled municipalities. An orphaned municipality appears in
// exactly one of the two results: loaded with an empty department
// reference when 'force' is set, skipped otherwise.
func keepMunicipalities(items []*municipalities.Municipality, prov_codes map[string]bool, assigned map[string]string, orphans []error, force bool) ([]*municipalities.Municipality, []error) {

	skipped := make([]error, 0)

	if !force {
		skipped = append(skipped, orphans...)
	}

	kept := make([]*municipalities.Municipality, 0, len(items))

	for _, m := range items {

		if !prov_codes[m.ProvinceCode] {
			skipped = append(skipped, georef.OrphanEntity{Kind: georef.MunicipalityKind, Code: m.Code})
			continue
		}

		dept_code, ok := assigned[m.Code]

		if !ok && !force {
			continue
		}

		m.DepartmentCode = dept_code
		kept = append(kept, m)
	}

	return kept, skipped
}

func (p *Pipeline) runLocalities(ctx context.Context, deps []*departments.Department) (*Summary, []*localities.Locality) {

	s := &Summary{Kind: georef.LocalityKind, Status: StageFailed}

	items, skipped, err := localities.CompileLocalitiesData(ctx, p.opts.LocalitySources...)

	if err != nil {
		s.Err = err
		return s, nil
	}

	dept_codes := make(map[string]bool)

	for _, d := range deps {
		dept_codes[d.Code] = true
	}

	kept := make([]*localities.Locality, 0, len(items))

	for _, l := range items {

		if !dept_codes[l.DepartmentCode] {
			skipped = append(skipped, georef.OrphanEntity{Kind: georef.LocalityKind, Code: l.Code})
			continue
		}

		kept = append(kept, l)
	}

	err = p.manager.LoadLocalities(ctx, kept)

	if err != nil {
		s.Err = err
		return s, nil
	}

	err = p.export(georef.LocalityKind, export.LocalityFeatures(kept))

	if err != nil {
		s.Err = err
		return s, nil
	}

	s.Status = StageCommitted
	s.Loaded = len(kept)
	s.Skipped = len(skipped)
	s.Diagnostics = diagnostics(skipped)

	return s, kept
}

func (p *Pipeline) runStreets(ctx context.Context, locs []*localities.Locality) (*Summary, []*streets.Street) {

	s := &Summary{Kind: georef.StreetKind, Status: StageFailed}

	records, skipped, err := streets.CompileStreetRecords(ctx, p.opts.StreetSources...)

	if err != nil {
		s.Err = err
		return s, nil
	}

	// Records missing a locality code are resolved by spatial containment
	// against localities with a polygonal footprint.

	unresolved := make([]hierarchy.Entity, 0)

	for i, r := range records {

		if r.LocalityCode == "" {
			unresolved = append(unresolved, hierarchy.Entity{
				Code:     strconv.Itoa(i),
				Geometry: r.Geometry,
			})
		}
	}

	if len(unresolved) > 0 {

		parents := make([]hierarchy.Entity, 0, len(locs))

		for _, l := range locs {
			parents = append(parents, hierarchy.Entity{Code: l.Code, Geometry: l.Geometry})
		}

		assigned, _ := hierarchy.Link(georef.StreetKind, unresolved, parents, p.linkOptions())

		for child_code, locality_code := range assigned {

			idx, err := strconv.Atoi(child_code)

			if err != nil {
				continue
			}

			records[idx].LocalityCode = locality_code
		}
	}

	sts, build_errors := streets.BuildStreets(records)
	skipped = append(skipped, build_errors...)

	loc_codes := make(map[string]bool)

	for _, l := range locs {
		loc_codes[l.Code] = true
	}

	kept := make([]*streets.Street, 0, len(sts))

	for _, st := range sts {

		if !loc_codes[st.LocalityCode] {
			skipped = append(skipped, georef.OrphanEntity{Kind: georef.StreetKind, Code: st.Code})
			continue
		}

		kept = append(kept, st)
	}

	err = p.manager.LoadStreets(ctx, kept)

	if err != nil {
		s.Err = err
		return s, nil
	}

	err = p.export(georef.StreetKind, export.StreetFeatures(kept))

	if err != nil {
		s.Err = err
		return s, nil
	}

	s.Status = StageCommitted
	s.Loaded = len(kept)
	s.Skipped = len(skipped)
	s.Diagnostics = diagnostics(skipped)

	return s, kept
}

// runTopology derives intersections and blocks, fanning localities out to
// a bounded worker pool. Every locality's street network is independent of
// every other locality's, so the only synchronization is collecting
// results.
func (p *Pipeline) runTopology(ctx context.Context, sts []*streets.Street) (*Summary, *Summary) {

	inter_summary := &Summary{Kind: georef.IntersectionKind, Status: StageFailed}
	block_summary := &Summary{Kind: georef.BlockKind, Status: StageSkipped}

	by_locality := make(map[string][]*streets.Street)
	locality_codes := make([]string, 0)

	for _, st := range sts {

		_, exists := by_locality[st.LocalityCode]

		if !exists {
			locality_codes = append(locality_codes, st.LocalityCode)
		}

		by_locality[st.LocalityCode] = append(by_locality[st.LocalityCode], st)
	}

	sort.Strings(locality_codes)

	workers := p.opts.Workers

	if workers < 1 {
		workers = runtime.NumCPU()
	}

	topo_opts := p.topologyOptions()

	derived := make(map[string]*topology.Derivation)
	failed := make(map[string][]error)

	mu := new(sync.Mutex)
	wg := new(sync.WaitGroup)
	sem := make(chan struct{}, workers)

	for _, locality_code := range locality_codes {

		wg.Add(1)
		sem <- struct{}{}

		go func(locality_code string) {

			defer wg.Done()
			defer func() { <-sem }()

			d, errs := topology.DeriveLocality(by_locality[locality_code], topo_opts)

			mu.Lock()
			defer mu.Unlock()

			derived[locality_code] = d
			failed[locality_code] = errs
		}(locality_code)
	}

	wg.Wait()

	all_intersections, all_blocks, derivation_errors := mergeDerived(locality_codes, derived, failed)

	err := p.manager.LoadIntersections(ctx, all_intersections)

	if err != nil {
		inter_summary.Err = err
		return inter_summary, block_summary
	}

	err = p.export(georef.IntersectionKind, export.IntersectionFeatures(all_intersections))

	if err != nil {
		inter_summary.Err = err
		return inter_summary, block_summary
	}

	inter_summary.Status = StageCommitted
	inter_summary.Loaded = len(all_intersections)
	inter_summary.Failed = countFailed(derivation_errors)
	inter_summary.Diagnostics = diagnostics(derivation_errors)

	block_summary.Status = StageFailed

	err = p.manager.LoadBlocks(ctx, all_blocks)

	if err != nil {
		block_summary.Err = err
		return inter_summary, block_summary
	}

	err = p.export(georef.BlockKind, export.BlockFeatures(all_blocks))

	if err != nil {
		block_summary.Err = err
		return inter_summary, block_summary
	}

	block_summary.Status = StageCommitted
	block_summary.Loaded = len(all_blocks)

	return inter_summary, block_summary
}

// mergeDerived flattens per-locality derivations in locality-code order so
// that re-runs see identical entity and diagnostic sequences regardless of
// worker completion order.
func mergeDerived(locality_codes []string, derived map[string]*topology.Derivation, failed map[string][]error) ([]*topology.Intersection, []*topology.Block, []error) {

	intersections := make([]*topology.Intersection, 0)
	blocks := make([]*topology.Block, 0)
	errs := make([]error, 0)

	for _, locality_code := range locality_codes {

		d := derived[locality_code]

		intersections = append(intersections, d.Intersections...)
		blocks = append(blocks, d.Blocks...)
		errs = append(errs, failed[locality_code]...)
	}

	return intersections, blocks, errs
}

func (p *Pipeline) export(kind georef.Kind, features []*geojson.Feature) error {

	opts := &export.Options{
		Dir:     p.opts.ExportDir,
		Version: p.opts.Version,
	}

	err := export.WriteGeoJSON(kind, features, opts)

	if err != nil {
		return err
	}

	if p.opts.WriteCSV {
		return export.WriteCSV(kind, features, opts)
	}

	return nil
}

func (p *Pipeline) linkOptions() *hierarchy.Options {

	opts := hierarchy.DefaultOptions()

	if p.opts.OverlapGridSize > 0 {
		opts.GridSize = p.opts.OverlapGridSize
	}

	return opts
}

func (p *Pipeline) topologyOptions() *topology.Options {

	opts := topology.DefaultOptions()

	if p.opts.SnapTolerance > 0 {
		opts.SnapTolerance = p.opts.SnapTolerance
	}

	if p.opts.MinBlockLength > 0 {
		opts.MinBlockLength = p.opts.MinBlockLength
	}

	return opts
}

// SourceList parses a comma-separated flag value in to source URIs.
func SourceList(raw string) []string {

	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	uris := make([]string, 0, len(parts))

	for _, p := range parts {

		p = strings.TrimSpace(p)

		if p != "" {
			uris = append(uris, p)
		}
	}

	return uris
}
