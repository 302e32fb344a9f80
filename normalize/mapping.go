package normalize

import (
	"github.com/tidwall/gjson"
)

// FieldMapping names the raw attribute fields holding each canonical value
// for one provider's schema. Fields are gjson paths relative to the raw
// feature's "properties" member. Unused fields are left empty.
type FieldMapping struct {
	Code     string
	Name     string
	Category string
	// Locality names the field carrying the containing locality's code,
	// for street sources that publish one.
	Locality string
	// Door-number range fields for street sources, per side of the street.
	StartLeft  string
	StartRight string
	EndLeft    string
	EndRight   string
}

// Property returns the raw attribute 'field' from the GeoJSON-encoded
// feature 'body'.
func Property(body []byte, field string) gjson.Result {
	return gjson.GetBytes(body, "properties."+field)
}

// Str returns the raw attribute 'field' as a trimmed string, or "" when the
// field is unmapped or absent.
func Str(body []byte, field string) string {

	if field == "" {
		return ""
	}

	return DisplayName(Property(body, field).String())
}

// Int returns the raw attribute 'field' as an integer, or 0 when the field
// is unmapped or absent.
func Int(body []byte, field string) int64 {

	if field == "" {
		return 0
	}

	return Property(body, field).Int()
}
