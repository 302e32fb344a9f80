package export

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/sfomuseum/go-csvdict/v2"

	"github.com/georef-ar/go-georef-etl"
)

// WriteCSV writes one kind's feature list as a CSV artifact named
// '<kind>.csv', with the geometry rendered as well-known text.
func WriteCSV(kind georef.Kind, features []*geojson.Feature, opts *Options) error {

	var buf bytes.Buffer

	var csv_wr *csvdict.Writer

	for _, f := range features {

		row := make(map[string]string)

		for k, v := range f.Properties {
			row[k] = fmt.Sprintf("%v", v)
		}

		row["geometry"] = wkt.MarshalString(f.Geometry)

		if csv_wr == nil {

			w, err := csvdict.NewWriter(&buf)

			if err != nil {
				return fmt.Errorf("Failed to create CSV writer for %s, %w", kind, err)
			}

			csv_wr = w
		}

		err := csv_wr.WriteRow(row)

		if err != nil {
			return fmt.Errorf("Failed to write CSV row for %s, %w", kind, err)
		}
	}

	if csv_wr != nil {
		csv_wr.Flush()
	}

	path := filepath.Join(opts.Dir, fmt.Sprintf("%s.csv", kind))
	return atomicWrite(path, buf.Bytes())
}
