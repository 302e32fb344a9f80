package georef

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aaronland/go-roster"
	"github.com/paulmach/orb"
)

// Feature is the canonical raw record emitted by every Source
// implementation. Normalizers only ever see this shape, never
// format-specific fields.
type Feature struct {
	// Source is the lineage tag for the provider this feature was read
	// from, for example "ign" or "indec".
	Source string
	// Priority ranks overlapping providers during deduplication. Higher
	// wins.
	Priority int
	// Body is the raw GeoJSON-encoded feature, used for attribute
	// extraction.
	Body []byte
	// Geometry is the decoded feature geometry, already reprojected to
	// WGS84.
	Geometry orb.Geometry
}

// SourceCallbackFunc is invoked once for every feature emitted by a Source.
type SourceCallbackFunc func(ctx context.Context, f *Feature) error

// Source is anything capable of yielding raw vector features with
// attributes and a geometry in a known coordinate reference system.
type Source interface {
	// IterateFeatures invokes 'cb' for each feature in the source.
	IterateFeatures(ctx context.Context, cb SourceCallbackFunc) error
	// Tag returns the source lineage tag.
	Tag() string
	// Close releases any resources held by the source.
	Close() error
}

var source_roster roster.Roster

// SourceInitializationFunc is a function defined by individual source
// packages and used to create an instance of that source.
type SourceInitializationFunc func(ctx context.Context, uri string) (Source, error)

// RegisterSource registers 'scheme' as a key pointing to 'init_func' in an
// internal lookup table used to create new `Source` instances by the
// `NewSource` method.
func RegisterSource(ctx context.Context, scheme string, init_func SourceInitializationFunc) error {

	err := ensureSourceRoster()

	if err != nil {
		return err
	}

	return source_roster.Register(ctx, scheme, init_func)
}

func ensureSourceRoster() error {

	if source_roster == nil {

		r, err := roster.NewDefaultRoster()

		if err != nil {
			return err
		}

		source_roster = r
	}

	return nil
}

// NewSource returns a new `Source` instance configured by 'uri'. The value
// of 'uri' is parsed as a `url.URL` and its scheme is used as the key for a
// corresponding `SourceInitializationFunc` function used to instantiate the
// new `Source`. It is assumed that the scheme will have been registered by
// the source implementation's package init function.
func NewSource(ctx context.Context, uri string) (Source, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse URI, %w", err)
	}

	scheme := u.Scheme

	i, err := source_roster.Driver(ctx, scheme)

	if err != nil {
		return nil, fmt.Errorf("Failed to find initialization func for '%s', %w", scheme, err)
	}

	init_func := i.(SourceInitializationFunc)
	return init_func(ctx, uri)
}

// SourceSchemes returns the list of schemes that have been registered.
func SourceSchemes() []string {

	ctx := context.Background()
	schemes := []string{}

	err := ensureSourceRoster()

	if err != nil {
		return schemes
	}

	for _, dr := range source_roster.Drivers(ctx) {
		scheme := fmt.Sprintf("%s://", strings.ToLower(dr))
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)
	return schemes
}
