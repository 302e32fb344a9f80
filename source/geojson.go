package source

import (
	"context"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"

	"github.com/georef-ar/go-georef-etl"
)

// GeoJSONSource reads a single GeoJSON FeatureCollection document from
// disk. URIs look like:
//
//	geojson:///path/to/provinces.json?tag=ign&priority=2&crs=EPSG:4326
type GeoJSONSource struct {
	georef.Source
	args *source_args
}

func init() {

	ctx := context.Background()
	err := georef.RegisterSource(ctx, "geojson", NewGeoJSONSource)

	if err != nil {
		panic(err)
	}
}

func NewGeoJSONSource(ctx context.Context, uri string) (georef.Source, error) {

	args, err := parseSourceURI(uri)

	if err != nil {
		return nil, err
	}

	s := &GeoJSONSource{
		args: args,
	}

	return s, nil
}

func (s *GeoJSONSource) IterateFeatures(ctx context.Context, cb georef.SourceCallbackFunc) error {

	body, err := os.ReadFile(s.args.path)

	if err != nil {
		return georef.SourceUnavailable{URI: s.args.path, Err: err}
	}

	t := gjson.GetBytes(body, "type").String()

	switch t {
	case "FeatureCollection":
		// pass
	case "Feature":
		return emitFeature(ctx, body, s.args, cb)
	default:
		return georef.SourceUnavailable{URI: s.args.path, Err: fmt.Errorf("unexpected document type '%s'", t)}
	}

	features := gjson.GetBytes(body, "features")

	for _, f := range features.Array() {

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			// pass
		}

		err := emitFeature(ctx, []byte(f.Raw), s.args, cb)

		if err != nil {
			return err
		}
	}

	return nil
}

func (s *GeoJSONSource) Tag() string {
	return s.args.tag
}

func (s *GeoJSONSource) Close() error {
	return nil
}

// emitFeature decodes a single raw GeoJSON feature and hands it to 'cb' as
// a canonical `georef.Feature`. Features whose geometry fails to decode are
// emitted with a nil geometry; the normalizers classify and count them.
func emitFeature(ctx context.Context, body []byte, args *source_args, cb georef.SourceCallbackFunc) error {

	var geom orb.Geometry

	f, err := geojson.UnmarshalFeature(body)

	if err == nil && f.Geometry != nil {
		geom = f.Geometry
	}

	geom, err = reproject(geom, args.crs)

	if err != nil {
		return fmt.Errorf("Failed to reproject feature, %w", err)
	}

	record := &georef.Feature{
		Source:   args.tag,
		Priority: args.priority,
		Body:     body,
		Geometry: geom,
	}

	return cb(ctx, record)
}
