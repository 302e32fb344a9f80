// Package municipalities normalizes local government areas. A
// municipality's department is not encoded in its code; it is assigned
// afterwards by spatial containment.
package municipalities

import (
	"fmt"

	"github.com/paulmach/orb"
)

type Municipality struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Category     string `json:"category,omitempty"`
	ProvinceCode string `json:"province_code"`
	// DepartmentCode is assigned by the hierarchy linker, not by the raw
	// source.
	DepartmentCode string `json:"department_code"`
	Source         string `json:"source"`

	Geometry orb.MultiPolygon `json:"-"`
}

func (m *Municipality) String() string {
	return fmt.Sprintf("%s %s (%s)", m.Code, m.Name, m.Source)
}
