// Package export serializes loaded entity tables to versioned file
// artifacts, one per entity kind. Writes are all-or-nothing: a temp file is
// renamed into place so a partially written export is never visible.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"

	"github.com/georef-ar/go-georef-etl"
)

type Options struct {
	// Dir is the directory artifacts are written into.
	Dir string
	// Version is recorded in every artifact. It must be supplied by the
	// caller; deriving it from the clock would break run-over-run
	// reproducibility.
	Version string
}

// WriteGeoJSON writes one kind's feature list as a GeoJSON
// FeatureCollection artifact named '<kind>.geojson'.
func WriteGeoJSON(kind georef.Kind, features []*geojson.Feature, opts *Options) error {

	fc := geojson.NewFeatureCollection()
	fc.Features = features

	fc.ExtraMembers = map[string]interface{}{
		"kind":    string(kind),
		"version": opts.Version,
	}

	body, err := fc.MarshalJSON()

	if err != nil {
		return fmt.Errorf("Failed to marshal %s collection, %w", kind, err)
	}

	path := filepath.Join(opts.Dir, fmt.Sprintf("%s.geojson", kind))
	return atomicWrite(path, body)
}

// atomicWrite writes 'body' to 'path' through a temp file and rename.
func atomicWrite(path string, body []byte) error {

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, fmt.Sprintf(".%s.*", base))

	if err != nil {
		return fmt.Errorf("Failed to create temp file for %s, %w", path, err)
	}

	tmp_path := tmp.Name()

	_, err = tmp.Write(body)

	if err != nil {
		tmp.Close()
		os.Remove(tmp_path)
		return fmt.Errorf("Failed to write %s, %w", path, err)
	}

	err = tmp.Close()

	if err != nil {
		os.Remove(tmp_path)
		return fmt.Errorf("Failed to close %s, %w", path, err)
	}

	err = os.Rename(tmp_path, path)

	if err != nil {
		os.Remove(tmp_path)
		return fmt.Errorf("Failed to rename %s in to place, %w", path, err)
	}

	return nil
}
