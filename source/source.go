// Package source provides `georef.Source` implementations for reading raw
// vector features from GeoJSON feature collections, line-delimited GeoJSON
// and whosonfirst/go-whosonfirst-iterate emitters.
package source

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

type source_args struct {
	path     string
	tag      string
	priority int
	crs      string
}

func parseSourceURI(uri string) (*source_args, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse URI, %w", err)
	}

	path := u.Path

	if u.Host != "" {
		path = filepath.Join(u.Host, u.Path)
	}

	q := u.Query()

	args := &source_args{
		path:     path,
		tag:      q.Get("tag"),
		priority: 0,
		crs:      q.Get("crs"),
	}

	if q.Has("priority") {

		p, err := strconv.Atoi(q.Get("priority"))

		if err != nil {
			return nil, fmt.Errorf("Failed to parse ?priority= parameter, %w", err)
		}

		args.priority = p
	}

	return args, nil
}

// reproject converts 'g' from 'crs' to WGS84. Only web mercator inputs need
// converting; everything downstream of the source boundary assumes WGS84.
func reproject(g orb.Geometry, crs string) (orb.Geometry, error) {

	if g == nil {
		return nil, nil
	}

	switch crs {
	case "", "EPSG:4326", "WGS84", "CRS84":
		return g, nil
	case "EPSG:3857", "EPSG:900913":
		return project.Geometry(g, project.Mercator.ToWGS84), nil
	default:
		return nil, fmt.Errorf("Unsupported CRS '%s'", crs)
	}
}
