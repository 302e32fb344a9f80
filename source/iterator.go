package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
	wof_geometry "github.com/whosonfirst/go-whosonfirst-feature/geometry"
	"github.com/whosonfirst/go-whosonfirst-iterate/v2/iterator"

	"github.com/georef-ar/go-georef-etl"
)

// IteratorSource wraps a whosonfirst/go-whosonfirst-iterate/v2 instance.
// Each emitted document may be a single Feature or a FeatureCollection.
// URIs look like:
//
//	iterator://?uri=directory://&source=/usr/local/data/ign&tag=ign&priority=2
type IteratorSource struct {
	georef.Source
	iterator_uri     string
	iterator_sources []string
	args             *source_args
}

func init() {

	ctx := context.Background()
	err := georef.RegisterSource(ctx, "iterator", NewIteratorSource)

	if err != nil {
		panic(err)
	}
}

func NewIteratorSource(ctx context.Context, uri string) (georef.Source, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse URI, %w", err)
	}

	q := u.Query()

	iterator_uri := q.Get("uri")

	if iterator_uri == "" {
		return nil, fmt.Errorf("Missing ?uri= parameter")
	}

	iterator_sources := q["source"]

	if len(iterator_sources) == 0 {
		return nil, fmt.Errorf("Missing ?source= parameter")
	}

	args := &source_args{
		tag: q.Get("tag"),
		crs: q.Get("crs"),
	}

	if q.Has("priority") {

		p, err := strconv.Atoi(q.Get("priority"))

		if err != nil {
			return nil, fmt.Errorf("Failed to parse ?priority= parameter, %w", err)
		}

		args.priority = p
	}

	s := &IteratorSource{
		iterator_uri:     iterator_uri,
		iterator_sources: iterator_sources,
		args:             args,
	}

	return s, nil
}

func (s *IteratorSource) IterateFeatures(ctx context.Context, cb georef.SourceCallbackFunc) error {

	iter_cb := func(ctx context.Context, path string, r io.ReadSeeker, iter_args ...interface{}) error {

		body, err := io.ReadAll(r)

		if err != nil {
			return fmt.Errorf("Failed to read %s, %w", path, err)
		}

		t := gjson.GetBytes(body, "type").String()

		switch t {
		case "FeatureCollection":

			for _, f := range gjson.GetBytes(body, "features").Array() {

				err := s.emit(ctx, []byte(f.Raw), cb)

				if err != nil {
					return err
				}
			}

			return nil

		default:
			return s.emit(ctx, body, cb)
		}
	}

	iter, err := iterator.NewIterator(ctx, s.iterator_uri, iter_cb)

	if err != nil {
		return georef.SourceUnavailable{URI: s.iterator_uri, Err: err}
	}

	err = iter.IterateURIs(ctx, s.iterator_sources...)

	if err != nil {
		return georef.SourceUnavailable{URI: s.iterator_uri, Err: err}
	}

	return nil
}

func (s *IteratorSource) emit(ctx context.Context, body []byte, cb georef.SourceCallbackFunc) error {

	record := &georef.Feature{
		Source:   s.args.tag,
		Priority: s.args.priority,
		Body:     body,
	}

	geojson_geom, err := wof_geometry.Geometry(body)

	if err == nil {
		geom, err := reproject(geojson_geom.Geometry(), s.args.crs)

		if err != nil {
			return fmt.Errorf("Failed to reproject feature, %w", err)
		}

		record.Geometry = geom
	}

	return cb(ctx, record)
}

func (s *IteratorSource) Tag() string {
	return s.args.tag
}

func (s *IteratorSource) Close() error {
	return nil
}
