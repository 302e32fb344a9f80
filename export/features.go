package export

import (
	"github.com/paulmach/orb/geojson"

	"github.com/georef-ar/go-georef-etl/departments"
	"github.com/georef-ar/go-georef-etl/localities"
	"github.com/georef-ar/go-georef-etl/municipalities"
	"github.com/georef-ar/go-georef-etl/provinces"
	"github.com/georef-ar/go-georef-etl/streets"
	"github.com/georef-ar/go-georef-etl/topology"
)

// Feature builders, one per entity kind. Inputs are expected in code order;
// property keys are emitted sorted by the JSON encoder, so artifacts are
// byte-stable for unchanged input.

func ProvinceFeatures(items []*provinces.Province) []*geojson.Feature {

	features := make([]*geojson.Feature, len(items))

	for i, p := range items {

		f := geojson.NewFeature(p.Geometry)

		f.Properties = geojson.Properties{
			"code":   p.Code,
			"name":   p.Name,
			"source": p.Source,
		}

		features[i] = f
	}

	return features
}

func DepartmentFeatures(items []*departments.Department) []*geojson.Feature {

	features := make([]*geojson.Feature, len(items))

	for i, d := range items {

		f := geojson.NewFeature(d.Geometry)

		f.Properties = geojson.Properties{
			"code":          d.Code,
			"name":          d.Name,
			"province_code": d.ProvinceCode,
			"source":        d.Source,
		}

		features[i] = f
	}

	return features
}

func MunicipalityFeatures(items []*municipalities.Municipality) []*geojson.Feature {

	features := make([]*geojson.Feature, len(items))

	for i, m := range items {

		f := geojson.NewFeature(m.Geometry)

		f.Properties = geojson.Properties{
			"code":            m.Code,
			"name":            m.Name,
			"category":        m.Category,
			"province_code":   m.ProvinceCode,
			"department_code": m.DepartmentCode,
			"source":          m.Source,
		}

		features[i] = f
	}

	return features
}

func LocalityFeatures(items []*localities.Locality) []*geojson.Feature {

	features := make([]*geojson.Feature, len(items))

	for i, l := range items {

		f := geojson.NewFeature(l.Geometry)

		f.Properties = geojson.Properties{
			"code":            l.Code,
			"name":            l.Name,
			"category":        l.Category,
			"department_code": l.DepartmentCode,
			"source":          l.Source,
		}

		features[i] = f
	}

	return features
}

func StreetFeatures(items []*streets.Street) []*geojson.Feature {

	features := make([]*geojson.Feature, len(items))

	for i, s := range items {

		f := geojson.NewFeature(s.Geometry)

		f.Properties = geojson.Properties{
			"code":          s.Code,
			"name":          s.Name,
			"category":      s.Category,
			"locality_code": s.LocalityCode,
			"source":        s.Source,
			"start_left":    s.DoorNumbers.StartLeft,
			"start_right":   s.DoorNumbers.StartRight,
			"end_left":      s.DoorNumbers.EndLeft,
			"end_right":     s.DoorNumbers.EndRight,
		}

		features[i] = f
	}

	return features
}

func IntersectionFeatures(items []*topology.Intersection) []*geojson.Feature {

	features := make([]*geojson.Feature, len(items))

	for i, x := range items {

		f := geojson.NewFeature(x.Geometry)

		f.Properties = geojson.Properties{
			"code":          x.Code,
			"street_a_code": x.StreetACode,
			"street_b_code": x.StreetBCode,
		}

		features[i] = f
	}

	return features
}

func BlockFeatures(items []*topology.Block) []*geojson.Feature {

	features := make([]*geojson.Feature, len(items))

	for i, b := range items {

		f := geojson.NewFeature(b.Geometry)

		f.Properties = geojson.Properties{
			"code":                   b.Code,
			"street_code":            b.StreetCode,
			"from_intersection_code": b.FromIntersectionCode,
			"to_intersection_code":   b.ToIntersectionCode,
			"start_left":             b.DoorNumbers.StartLeft,
			"start_right":            b.DoorNumbers.StartRight,
			"end_left":               b.DoorNumbers.EndLeft,
			"end_right":              b.DoorNumbers.EndRight,
		}

		features[i] = f
	}

	return features
}
