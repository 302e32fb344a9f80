// Package localities normalizes populated places.
package localities

import (
	"fmt"

	"github.com/paulmach/orb"
)

type Locality struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	DepartmentCode string `json:"department_code"`
	Source         string `json:"source"`

	// Geometry is a point or, for some providers, a polygonal footprint.
	Geometry orb.Geometry `json:"-"`
}

func (l *Locality) String() string {
	return fmt.Sprintf("%s %s (%s)", l.Code, l.Name, l.Source)
}
