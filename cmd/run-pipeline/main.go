// run-pipeline is a command line tool to run the full reference pipeline:
// compile every entity kind from its raw sources, link hierarchies, derive
// intersections and blocks, load the database and write versioned export
// artifacts. It prints a per-stage report and exits non-zero if any stage
// failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sfomuseum/go-flags/multi"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/load"
	"github.com/georef-ar/go-georef-etl/pipeline"
	_ "github.com/georef-ar/go-georef-etl/source"
)

func main() {

	var province_uris multi.MultiString
	var department_uris multi.MultiString
	var municipality_uris multi.MultiString
	var locality_uris multi.MultiString
	var street_uris multi.MultiString

	flag.Var(&province_uris, "province-source-uri", "One or more source URIs for province features.")
	flag.Var(&department_uris, "department-source-uri", "One or more source URIs for department features.")
	flag.Var(&municipality_uris, "municipality-source-uri", "One or more source URIs for municipality features.")
	flag.Var(&locality_uris, "locality-source-uri", "One or more source URIs for locality features.")
	flag.Var(&street_uris, "street-source-uri", "One or more source URIs for street features.")

	version := flag.String("version", "", "The version label stamped on every export artifact. Required.")
	export_dir := flag.String("export-dir", "exports", "The directory to write export artifacts to.")
	write_csv := flag.Bool("csv", false, "Write CSV artifacts alongside GeoJSON.")

	snap_tolerance := flag.Float64("snap-tolerance", 0.0, "Distance in degrees below which nearby intersection points are merged. 0 uses the default.")
	min_block_length := flag.Float64("min-block-length", 0.0, "Minimum block length in degrees. Shorter pieces are merged into neighbours. 0 uses the default.")
	grid_size := flag.Int("overlap-grid-size", 0, "Sample grid resolution for overlap scoring. 0 uses the default.")

	force_orphans := flag.Bool("force-include-orphans", false, "Include municipalities with no overlapping department, with a null department reference.")
	workers := flag.Int("workers", 0, "The number of localities to derive topology for concurrently. 0 uses the number of CPUs.")

	migrate := flag.Bool("migrate", false, "Run schema migration before loading.")
	env_file := flag.String("env-file", "", "An optional .env file to load PG_* connection variables from.")

	flag.Parse()

	if *version == "" {
		log.Fatalf("Missing required -version flag")
	}

	if *env_file != "" {

		err := godotenv.Load(*env_file)

		if err != nil {
			log.Fatalf("Failed to load env file '%s', %v", *env_file, err)
		}
	}

	logger := georef.SetupLogger()

	ctx := context.Background()

	db, err := load.OpenDatabase()

	if err != nil {
		log.Fatalf("Failed to open database, %v", err)
	}

	defer db.Close()

	manager := load.NewManager(db)

	if *migrate {

		err = manager.MigrateSchema(ctx)

		if err != nil {
			log.Fatalf("Failed to migrate schema, %v", err)
		}
	}

	opts := &pipeline.Options{
		ProvinceSources:     province_uris,
		DepartmentSources:   department_uris,
		MunicipalitySources: municipality_uris,
		LocalitySources:     locality_uris,
		StreetSources:       street_uris,
		SnapTolerance:       *snap_tolerance,
		MinBlockLength:      *min_block_length,
		OverlapGridSize:     *grid_size,
		ForceIncludeOrphans: *force_orphans,
		ExportDir:           *export_dir,
		Version:             *version,
		WriteCSV:            *write_csv,
		Workers:             *workers,
	}

	p := pipeline.NewPipeline(manager, opts)

	summaries, run_err := p.Run(ctx)

	fmt.Println(pipeline.Report(summaries))

	if run_err != nil {
		logger.Error("Pipeline failed", "error", run_err)
		os.Exit(1)
	}
}
