// Package provinces normalizes top-level administrative divisions.
package provinces

import (
	"fmt"

	"github.com/paulmach/orb"
)

type Province struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Source string `json:"source"`

	Geometry orb.MultiPolygon `json:"-"`
}

func (p *Province) String() string {
	return fmt.Sprintf("%s %s (%s)", p.Code, p.Name, p.Source)
}
