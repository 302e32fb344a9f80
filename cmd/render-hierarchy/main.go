// render-hierarchy is a command line tool to draw the administrative
// containment graph for a set of raw sources, without touching the
// database. The graph is written as Graphviz DOT, or as a PNG image with
// the -image flag.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/sfomuseum/go-flags/multi"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/departments"
	"github.com/georef-ar/go-georef-etl/hierarchy"
	"github.com/georef-ar/go-georef-etl/localities"
	"github.com/georef-ar/go-georef-etl/municipalities"
	"github.com/georef-ar/go-georef-etl/provinces"
	"github.com/georef-ar/go-georef-etl/render"
	_ "github.com/georef-ar/go-georef-etl/source"
)

func main() {

	var province_uris multi.MultiString
	var department_uris multi.MultiString
	var municipality_uris multi.MultiString
	var locality_uris multi.MultiString

	flag.Var(&province_uris, "province-source-uri", "One or more source URIs for province features.")
	flag.Var(&department_uris, "department-source-uri", "One or more source URIs for department features.")
	flag.Var(&municipality_uris, "municipality-source-uri", "One or more source URIs for municipality features.")
	flag.Var(&locality_uris, "locality-source-uri", "One or more source URIs for locality features.")

	image := flag.Bool("image", false, "Render the graph as a PNG image instead of DOT.")
	target := flag.String("target", "", "The path to write the graph to. Empty writes to STDOUT.")

	flag.Parse()

	georef.SetupLogger()

	ctx := context.Background()

	prov, _, err := provinces.CompileProvincesData(ctx, province_uris...)

	if err != nil {
		log.Fatalf("Failed to compile provinces data, %v", err)
	}

	deps, _, err := departments.CompileDepartmentsData(ctx, department_uris...)

	if err != nil {
		log.Fatalf("Failed to compile departments data, %v", err)
	}

	munis, _, err := municipalities.CompileMunicipalitiesData(ctx, municipality_uris...)

	if err != nil {
		log.Fatalf("Failed to compile municipalities data, %v", err)
	}

	locs, _, err := localities.CompileLocalitiesData(ctx, locality_uris...)

	if err != nil {
		log.Fatalf("Failed to compile localities data, %v", err)
	}

	parents := make([]hierarchy.Entity, 0, len(deps))

	for _, d := range deps {
		parents = append(parents, hierarchy.Entity{Code: d.Code, Geometry: d.Geometry})
	}

	children := make([]hierarchy.Entity, 0, len(munis))

	for _, m := range munis {
		children = append(children, hierarchy.Entity{Code: m.Code, Geometry: m.Geometry})
	}

	assigned, _ := hierarchy.Link(georef.MunicipalityKind, children, parents, nil)

	for _, m := range munis {
		m.DepartmentCode = assigned[m.Code]
	}

	opts := &render.RenderOptions{
		Provinces:      prov,
		Departments:    deps,
		Municipalities: munis,
		Localities:     locs,
	}

	count, body, err := render.Render(ctx, opts)

	if err != nil {
		log.Fatalf("Failed to render graph, %v", err)
	}

	log.Printf("Rendered %d nodes", count)

	wr := os.Stdout

	if *target != "" {

		fh, err := os.OpenFile(*target, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)

		if err != nil {
			log.Fatalf("Failed to create writer for %s, %v", *target, err)
		}

		defer fh.Close()
		wr = fh
	}

	if !*image {

		_, err = wr.Write(body)

		if err != nil {
			log.Fatalf("Failed to write graph, %v", err)
		}

		return
	}

	err = render.Draw(ctx, body, wr)

	if err != nil {
		log.Fatalf("Failed to draw graph, %v", err)
	}
}
