// Package topology derives the entities that exist in no raw source:
// street intersections, and the blocks ("cuadras") between them. Derivation
// is a pure function of the input streets so that re-runs on unchanged
// input assign identical codes.
package topology

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/georef-ar/go-georef-etl/streets"
)

// Intersection is a derived point entity where two distinct street
// centerlines cross or touch.
type Intersection struct {
	Code        string `json:"code"`
	StreetACode string `json:"street_a_code"`
	StreetBCode string `json:"street_b_code"`

	Geometry orb.Point `json:"-"`

	// Arc-length positions of the intersection along each street, kept
	// for block construction.
	PositionA float64 `json:"-"`
	PositionB float64 `json:"-"`
}

func (i *Intersection) String() string {
	return fmt.Sprintf("%s (%s x %s)", i.Code, i.StreetACode, i.StreetBCode)
}

// Block is a derived segment entity spanning the portion of a street
// between two consecutive intersections. Open ends at street extremities
// leave the corresponding intersection code empty.
type Block struct {
	Code                 string              `json:"code"`
	StreetCode           string              `json:"street_code"`
	FromIntersectionCode string              `json:"from_intersection_code,omitempty"`
	ToIntersectionCode   string              `json:"to_intersection_code,omitempty"`
	DoorNumbers          streets.DoorNumbers `json:"door_numbers"`

	Geometry orb.MultiLineString `json:"-"`
}

func (b *Block) String() string {
	return fmt.Sprintf("%s [%s .. %s]", b.Code, b.FromIntersectionCode, b.ToIntersectionCode)
}

type Options struct {
	// SnapTolerance is the maximum distance, in coordinate units, within
	// which two candidate intersections of the same street pair are
	// considered the same real-world intersection.
	SnapTolerance float64
	// MinBlockLength is the length below which a dangling piece is merged
	// into its neighboring block instead of becoming one.
	MinBlockLength float64
}

// Defaults are expressed in degrees; roughly one meter and five meters at
// the equator. Both are tunable.
func DefaultOptions() *Options {
	return &Options{
		SnapTolerance:  1e-5,
		MinBlockLength: 5e-5,
	}
}

// Derivation is the complete derived output for one locality.
type Derivation struct {
	Intersections []*Intersection
	Blocks        []*Block
}
