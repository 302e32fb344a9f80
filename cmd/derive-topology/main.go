// derive-topology is a command line tool to derive intersections and blocks
// from one or more street sources without touching the database. Street
// records are grouped by locality, each locality's network is derived
// independently and the result is written to STDOUT as two GeoJSON feature
// collections.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"sort"

	"github.com/paulmach/orb/geojson"
	"github.com/sfomuseum/go-flags/multi"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/export"
	_ "github.com/georef-ar/go-georef-etl/source"
	"github.com/georef-ar/go-georef-etl/streets"
	"github.com/georef-ar/go-georef-etl/topology"
)

func main() {

	var street_uris multi.MultiString
	flag.Var(&street_uris, "street-source-uri", "One or more source URIs for street features.")

	locality := flag.String("locality", "", "Only derive topology for this locality code. Empty derives every locality.")
	snap_tolerance := flag.Float64("snap-tolerance", 0.0, "Distance in degrees below which nearby intersection points are merged. 0 uses the default.")
	min_block_length := flag.Float64("min-block-length", 0.0, "Minimum block length in degrees. Shorter pieces are merged into neighbours. 0 uses the default.")

	flag.Parse()

	georef.SetupLogger()

	ctx := context.Background()

	records, record_errors, err := streets.CompileStreetRecords(ctx, street_uris...)

	if err != nil {
		log.Fatalf("Failed to compile street records, %v", err)
	}

	for _, record_err := range record_errors {
		log.Printf("Skipped record, %v", record_err)
	}

	sts, build_errors := streets.BuildStreets(records)

	for _, build_err := range build_errors {
		log.Printf("Skipped street, %v", build_err)
	}

	by_locality := make(map[string][]*streets.Street)

	for _, st := range sts {

		if *locality != "" && st.LocalityCode != *locality {
			continue
		}

		by_locality[st.LocalityCode] = append(by_locality[st.LocalityCode], st)
	}

	locality_codes := make([]string, 0, len(by_locality))

	for code := range by_locality {
		locality_codes = append(locality_codes, code)
	}

	sort.Strings(locality_codes)

	opts := topology.DefaultOptions()

	if *snap_tolerance > 0 {
		opts.SnapTolerance = *snap_tolerance
	}

	if *min_block_length > 0 {
		opts.MinBlockLength = *min_block_length
	}

	all_intersections := make([]*topology.Intersection, 0)
	all_blocks := make([]*topology.Block, 0)

	for _, code := range locality_codes {

		d, errs := topology.DeriveLocality(by_locality[code], opts)

		for _, derive_err := range errs {
			log.Printf("Skipped street in locality %s, %v", code, derive_err)
		}

		all_intersections = append(all_intersections, d.Intersections...)
		all_blocks = append(all_blocks, d.Blocks...)
	}

	enc := json.NewEncoder(os.Stdout)

	inter_fc := geojson.NewFeatureCollection()
	inter_fc.Features = export.IntersectionFeatures(all_intersections)

	err = enc.Encode(inter_fc)

	if err != nil {
		log.Fatalf("Failed to encode intersections, %v", err)
	}

	block_fc := geojson.NewFeatureCollection()
	block_fc.Features = export.BlockFeatures(all_blocks)

	err = enc.Encode(block_fc)

	if err != nil {
		log.Fatalf("Failed to encode blocks, %v", err)
	}
}
