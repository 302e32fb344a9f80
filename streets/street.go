// Package streets normalizes named street centerlines. Raw street segments
// are merged into one Street per (normalized name, locality) pair; a
// street's geometry is the union of every raw segment sharing its name
// within the locality.
package streets

import (
	"fmt"

	"github.com/paulmach/orb"
)

// DoorNumbers holds the address-number range for each side of a street,
// following the even/odd numbering convention.
type DoorNumbers struct {
	StartLeft  int64 `json:"start_left"`
	StartRight int64 `json:"start_right"`
	EndLeft    int64 `json:"end_left"`
	EndRight   int64 `json:"end_right"`
}

type Street struct {
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Category     string      `json:"category,omitempty"`
	LocalityCode string      `json:"locality_code"`
	Source       string      `json:"source"`
	DoorNumbers  DoorNumbers `json:"door_numbers"`

	Geometry orb.MultiLineString `json:"-"`
}

func (s *Street) String() string {
	return fmt.Sprintf("%s %s (%s)", s.Code, s.Name, s.LocalityCode)
}

// Record is one normalized raw street segment, not yet merged into a
// Street. Records missing a locality code are resolved spatially before
// merging.
type Record struct {
	Name         string
	Key          string
	Category     string
	LocalityCode string
	Source       string
	Priority     int
	DoorNumbers  DoorNumbers
	Geometry     orb.MultiLineString
}

func (r *Record) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.Source)
}
