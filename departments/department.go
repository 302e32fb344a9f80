// Package departments normalizes second-level administrative divisions.
package departments

import (
	"fmt"

	"github.com/paulmach/orb"
)

type Department struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	ProvinceCode string `json:"province_code"`
	Source       string `json:"source"`

	Geometry orb.MultiPolygon `json:"-"`
}

func (d *Department) String() string {
	return fmt.Sprintf("%s %s (%s)", d.Code, d.Name, d.Source)
}
