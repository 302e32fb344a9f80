// wkt is a command line tool to dump raw source features as CSV rows with
// well-known-text (WKT) geometries, for eyeballing a provider's data before
// wiring it in to the pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/sfomuseum/go-csvdict/v2"
	"github.com/sfomuseum/go-flags/multi"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/normalize"
	_ "github.com/georef-ar/go-georef-etl/source"
)

func main() {

	var source_uris multi.MultiString
	flag.Var(&source_uris, "source-uri", "One or more source URIs to dump.")

	code_field := flag.String("code-field", "", "The property holding the entity code.")
	name_field := flag.String("name-field", "", "The property holding the entity name.")

	flag.Parse()

	var csv_wr *csvdict.Writer

	wr := os.Stdout

	mu := new(sync.Mutex)

	source_cb := func(ctx context.Context, f *georef.Feature) error {

		out := map[string]string{
			"source": f.Source,
			"wkt":    "",
		}

		if f.Geometry != nil {
			out["wkt"] = wkt.MarshalString(f.Geometry)
		}

		if *code_field != "" {
			out["code"] = normalize.Str(f.Body, *code_field)
		}

		if *name_field != "" {
			out["name"] = normalize.Str(f.Body, *name_field)
		}

		mu.Lock()
		defer mu.Unlock()

		if csv_wr == nil {

			w, err := csvdict.NewWriter(wr)

			if err != nil {
				return fmt.Errorf("Failed to create CSV writer, %w", err)
			}

			csv_wr = w
		}

		err := csv_wr.WriteRow(out)

		if err != nil {
			return fmt.Errorf("Failed to write CSV row, %w", err)
		}

		return nil
	}

	ctx := context.Background()

	for _, uri := range source_uris {

		s, err := georef.NewSource(ctx, uri)

		if err != nil {
			log.Fatalf("Failed to create source for '%s', %v", uri, err)
		}

		err = s.IterateFeatures(ctx, source_cb)

		if err != nil {
			log.Fatalf("Failed to iterate features for '%s', %v", uri, err)
		}

		s.Close()
	}

	if csv_wr != nil {
		csv_wr.Flush()
	}
}
