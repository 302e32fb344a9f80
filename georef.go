package georef

// Kind labels one of the entity kinds produced by the pipeline.
type Kind string

const (
	ProvinceKind     Kind = "provinces"
	DepartmentKind   Kind = "departments"
	MunicipalityKind Kind = "municipalities"
	LocalityKind     Kind = "localities"
	StreetKind       Kind = "streets"
	IntersectionKind Kind = "intersections"
	BlockKind        Kind = "blocks"
)

// Kinds returns every entity kind in dependency (load) order. Parent kinds
// always precede the kinds that reference them.
func Kinds() []Kind {

	return []Kind{
		ProvinceKind,
		DepartmentKind,
		MunicipalityKind,
		LocalityKind,
		StreetKind,
		IntersectionKind,
		BlockKind,
	}
}

// Canonical code widths, in digits. Each non-root code is prefixed by its
// parent's code.
const (
	ProvinceCodeLength   = 2
	DepartmentCodeLength = 5
	// Municipality codes are province-prefixed only. Their department is
	// assigned spatially and recorded as a reference attribute.
	MunicipalityCodeLength = 6
	LocalityCodeLength     = 8
	StreetCodeLength       = 13
)
