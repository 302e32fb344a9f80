package topology

import (
	"math"

	"github.com/paulmach/orb"
)

// candidate is a geometric intersection between two segments of different
// streets, before snap-tolerance merging. Street A always carries the
// lower code.
type candidate struct {
	a    *street_net
	b    *street_net
	pt   orb.Point
	posA float64
	posB float64
}

const parametric_eps = 1e-12

// segmentIntersection computes the intersection of segments (a1,a2) and
// (b1,b2). For collinear overlaps the midpoint of the shared extent is
// returned. The returned parameters are positions along each segment in
// [0, 1].
func segmentIntersection(a1, a2, b1, b2 orb.Point) (orb.Point, float64, float64, bool) {

	r := orb.Point{a2[0] - a1[0], a2[1] - a1[1]}
	s := orb.Point{b2[0] - b1[0], b2[1] - b1[1]}
	qp := orb.Point{b1[0] - a1[0], b1[1] - a1[1]}

	denom := r[0]*s[1] - r[1]*s[0]
	qpxr := qp[0]*r[1] - qp[1]*r[0]

	if math.Abs(denom) < parametric_eps {

		// Parallel. Only collinear overlaps count.
		if math.Abs(qpxr) >= parametric_eps {
			return orb.Point{}, 0, 0, false
		}

		rlen2 := r[0]*r[0] + r[1]*r[1]

		if rlen2 < parametric_eps {
			return orb.Point{}, 0, 0, false
		}

		t0 := (qp[0]*r[0] + qp[1]*r[1]) / rlen2
		t1 := t0 + (s[0]*r[0]+s[1]*r[1])/rlen2

		lo := math.Max(math.Min(t0, t1), 0)
		hi := math.Min(math.Max(t0, t1), 1)

		if lo > hi {
			return orb.Point{}, 0, 0, false
		}

		t := (lo + hi) / 2
		pt := orb.Point{a1[0] + t*r[0], a1[1] + t*r[1]}

		slen2 := s[0]*s[0] + s[1]*s[1]
		u := 0.0

		if slen2 >= parametric_eps {
			u = ((pt[0]-b1[0])*s[0] + (pt[1]-b1[1])*s[1]) / slen2
			u = clamp01(u)
		}

		return pt, t, u, true
	}

	t := (qp[0]*s[1] - qp[1]*s[0]) / denom
	u := qpxr / denom

	if t < -parametric_eps || t > 1+parametric_eps {
		return orb.Point{}, 0, 0, false
	}

	if u < -parametric_eps || u > 1+parametric_eps {
		return orb.Point{}, 0, 0, false
	}

	t = clamp01(t)
	u = clamp01(u)

	pt := orb.Point{a1[0] + t*r[0], a1[1] + t*r[1]}
	return pt, t, u, true
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

// grid is a uniform spatial hash over segment bounding boxes, used to
// avoid testing every pair of segments in a locality.
type grid struct {
	cell  float64
	cells map[[2]int][]int
}

func newGrid(cell float64) *grid {

	return &grid{
		cell:  cell,
		cells: make(map[[2]int][]int),
	}
}

func (g *grid) insert(idx int, a, b orb.Point) {

	min_x := int(math.Floor(math.Min(a[0], b[0]) / g.cell))
	max_x := int(math.Floor(math.Max(a[0], b[0]) / g.cell))
	min_y := int(math.Floor(math.Min(a[1], b[1]) / g.cell))
	max_y := int(math.Floor(math.Max(a[1], b[1]) / g.cell))

	for x := min_x; x <= max_x; x++ {

		for y := min_y; y <= max_y; y++ {
			key := [2]int{x, y}
			g.cells[key] = append(g.cells[key], idx)
		}
	}
}

// pairs invokes 'visit' once for every pair of segment indexes sharing at
// least one cell.
func (g *grid) pairs(visit func(i, j int)) {

	seen := make(map[[2]int]struct{})

	for _, members := range g.cells {

		for x := 0; x < len(members); x++ {

			for y := x + 1; y < len(members); y++ {

				i := members[x]
				j := members[y]

				if j < i {
					i, j = j, i
				}

				key := [2]int{i, j}

				_, done := seen[key]

				if done {
					continue
				}

				seen[key] = struct{}{}
				visit(i, j)
			}
		}
	}
}

// findCandidates intersects every pair of segments belonging to different
// streets.
func findCandidates(nets []*street_net, cell float64) []candidate {

	all := make([]segment, 0)

	for _, net := range nets {
		all = append(all, net.segments...)
	}

	g := newGrid(cell)

	for i, seg := range all {
		g.insert(i, seg.a, seg.b)
	}

	candidates := make([]candidate, 0)

	g.pairs(func(i, j int) {

		sa := all[i]
		sb := all[j]

		if sa.street == sb.street {
			return
		}

		pt, t, u, ok := segmentIntersection(sa.a, sa.b, sb.a, sb.b)

		if !ok {
			return
		}

		c := candidate{
			a:    sa.street,
			b:    sb.street,
			pt:   pt,
			posA: sa.offset + t*sa.length,
			posB: sb.offset + u*sb.length,
		}

		if c.b.street.Code < c.a.street.Code {
			c.a, c.b = c.b, c.a
			c.posA, c.posB = c.posB, c.posA
		}

		candidates = append(candidates, c)
	})

	return candidates
}
