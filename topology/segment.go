package topology

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/streets"
)

// segment is one atomic two-point piece of a street's centerline. Splitting
// every street down to atomic segments subsumes splitting at self-crossing
// vertices: no segment can cross another except at a computable point.
type segment struct {
	street *street_net
	a      orb.Point
	b      orb.Point
	// offset is the arc-length position of 'a' from the start of the
	// street's concatenated geometry.
	offset float64
	length float64
}

// street_net is a street plus its decomposition working set.
type street_net struct {
	street   *streets.Street
	segments []segment
	length   float64
}

func decompose(st *streets.Street) (*street_net, error) {

	net := &street_net{
		street: st,
	}

	offset := 0.0

	for _, part := range st.Geometry {

		for i := 1; i < len(part); i++ {

			a := part[i-1]
			b := part[i]

			l := planar.Distance(a, b)

			if l == 0 {
				continue
			}

			net.segments = append(net.segments, segment{
				street: net,
				a:      a,
				b:      b,
				offset: offset,
				length: l,
			})

			offset = offset + l
		}
	}

	if len(net.segments) == 0 {
		return nil, georef.TopologyDerivationFailed{Street: st.Code, Reason: "no usable segments"}
	}

	net.length = offset
	return net, nil
}

// substring extracts the sub-line of 'st' between arc-length positions
// 'from' and 'to'. Disjoint parts of the street are never bridged; the
// result may have multiple parts.
func substring(st *streets.Street, from float64, to float64) orb.MultiLineString {

	out := make(orb.MultiLineString, 0, 1)
	offset := 0.0

	for _, part := range st.Geometry {

		var cur orb.LineString

		for i := 1; i < len(part); i++ {

			a := part[i-1]
			b := part[i]

			l := planar.Distance(a, b)

			if l == 0 {
				continue
			}

			s0 := offset
			s1 := offset + l
			offset = s1

			lo := math.Max(from, s0)
			hi := math.Min(to, s1)

			if lo >= hi {
				continue
			}

			p0 := lerp(a, b, (lo-s0)/l)
			p1 := lerp(a, b, (hi-s0)/l)

			if len(cur) == 0 {
				cur = append(cur, p0)
			}

			cur = append(cur, p1)
		}

		if len(cur) >= 2 {
			out = append(out, cur)
		}
	}

	return out
}

func lerp(a orb.Point, b orb.Point, t float64) orb.Point {
	return orb.Point{
		a[0] + t*(b[0]-a[0]),
		a[1] + t*(b[1]-a[1]),
	}
}
