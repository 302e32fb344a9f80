package source

import (
	"bufio"
	"context"
	"os"

	"github.com/georef-ar/go-georef-etl"
)

// GeoJSONLSource reads line-delimited GeoJSON features from disk. URIs look
// like:
//
//	geojsonl:///path/to/streets.jsonl?tag=indec&priority=1
type GeoJSONLSource struct {
	georef.Source
	args *source_args
}

func init() {

	ctx := context.Background()
	err := georef.RegisterSource(ctx, "geojsonl", NewGeoJSONLSource)

	if err != nil {
		panic(err)
	}
}

func NewGeoJSONLSource(ctx context.Context, uri string) (georef.Source, error) {

	args, err := parseSourceURI(uri)

	if err != nil {
		return nil, err
	}

	s := &GeoJSONLSource{
		args: args,
	}

	return s, nil
}

func (s *GeoJSONLSource) IterateFeatures(ctx context.Context, cb georef.SourceCallbackFunc) error {

	fh, err := os.Open(s.args.path)

	if err != nil {
		return georef.SourceUnavailable{URI: s.args.path, Err: err}
	}

	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	for scanner.Scan() {

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			// pass
		}

		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		body := make([]byte, len(line))
		copy(body, line)

		err := emitFeature(ctx, body, s.args, cb)

		if err != nil {
			return err
		}
	}

	err = scanner.Err()

	if err != nil {
		return georef.SourceUnavailable{URI: s.args.path, Err: err}
	}

	return nil
}

func (s *GeoJSONLSource) Tag() string {
	return s.args.tag
}

func (s *GeoJSONLSource) Close() error {
	return nil
}
