package topology

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb/planar"

	"github.com/georef-ar/go-georef-etl/streets"
)

// DeriveLocality computes every Intersection and Block for one locality's
// street network. Streets whose geometry cannot be decomposed are reported
// as `TopologyDerivationFailed` and skipped; they abort nothing else. The
// derivation is deterministic: identical input produces identical codes and
// geometries.
func DeriveLocality(locality_streets []*streets.Street, opts *Options) (*Derivation, []error) {

	if opts == nil {
		opts = DefaultOptions()
	}

	sorted := make([]*streets.Street, len(locality_streets))
	copy(sorted, locality_streets)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Code < sorted[j].Code
	})

	street_errors := make([]error, 0)
	nets := make([]*street_net, 0, len(sorted))

	for _, st := range sorted {

		net, err := decompose(st)

		if err != nil {
			street_errors = append(street_errors, err)
			continue
		}

		nets = append(nets, net)
	}

	candidates := findCandidates(nets, cellSize(nets, opts))
	intersections := mergeCandidates(candidates, opts.SnapTolerance)

	blocks := make([]*Block, 0)

	for _, net := range nets {
		blocks = append(blocks, buildBlocks(net, intersections, opts)...)
	}

	d := &Derivation{
		Intersections: intersections,
		Blocks:        blocks,
	}

	return d, street_errors
}

// cellSize picks the spatial-hash cell for intersection detection: a few
// average segment lengths, never below the snap tolerance.
func cellSize(nets []*street_net, opts *Options) float64 {

	total := 0.0
	count := 0

	for _, net := range nets {
		total = total + net.length
		count = count + len(net.segments)
	}

	if count == 0 {
		return math.Max(opts.SnapTolerance, 1e-4)
	}

	return math.Max(opts.SnapTolerance, 4*total/float64(count))
}

// mergeCandidates clusters candidates of the same street pair lying within
// the snap tolerance of one another and assigns deterministic codes: the
// sorted street codes joined, plus a sequence number ordered by position
// along the lower-coded street.
func mergeCandidates(candidates []candidate, snap float64) []*Intersection {

	groups := make(map[string][]candidate)
	pair_keys := make([]string, 0)

	for _, c := range candidates {

		pk := c.a.street.Code + "-" + c.b.street.Code

		_, exists := groups[pk]

		if !exists {
			pair_keys = append(pair_keys, pk)
		}

		groups[pk] = append(groups[pk], c)
	}

	sort.Strings(pair_keys)

	intersections := make([]*Intersection, 0, len(pair_keys))

	for _, pk := range pair_keys {

		group := groups[pk]

		sort.Slice(group, func(i, j int) bool {

			if group[i].posA != group[j].posA {
				return group[i].posA < group[j].posA
			}

			return group[i].posB < group[j].posB
		})

		// Union-find over pairwise proximity.

		parent := make([]int, len(group))

		for i := range parent {
			parent[i] = i
		}

		var find func(int) int

		find = func(i int) int {

			if parent[i] != i {
				parent[i] = find(parent[i])
			}

			return parent[i]
		}

		for i := 0; i < len(group); i++ {

			for j := i + 1; j < len(group); j++ {

				if planar.Distance(group[i].pt, group[j].pt) > snap {
					continue
				}

				ri := find(i)
				rj := find(j)

				if ri != rj {

					if rj < ri {
						ri, rj = rj, ri
					}

					parent[rj] = ri
				}
			}
		}

		roots := make([]int, 0)
		members := make(map[int][]candidate)

		for i, c := range group {

			r := find(i)

			_, exists := members[r]

			if !exists {
				roots = append(roots, r)
			}

			members[r] = append(members[r], c)
		}

		merged := make([]*Intersection, 0, len(roots))

		for _, r := range roots {

			cluster := members[r]

			x := &Intersection{
				StreetACode: cluster[0].a.street.Code,
				StreetBCode: cluster[0].b.street.Code,
			}

			n := float64(len(cluster))

			for _, c := range cluster {
				x.Geometry[0] = x.Geometry[0] + c.pt[0]/n
				x.Geometry[1] = x.Geometry[1] + c.pt[1]/n
				x.PositionA = x.PositionA + c.posA/n
				x.PositionB = x.PositionB + c.posB/n
			}

			merged = append(merged, x)
		}

		sort.Slice(merged, func(i, j int) bool {

			if merged[i].PositionA != merged[j].PositionA {
				return merged[i].PositionA < merged[j].PositionA
			}

			return merged[i].PositionB < merged[j].PositionB
		})

		for seq, x := range merged {
			x.Code = fmt.Sprintf("%s-%s-%02d", x.StreetACode, x.StreetBCode, seq+1)
		}

		intersections = append(intersections, merged...)
	}

	sort.Slice(intersections, func(i, j int) bool {
		return intersections[i].Code < intersections[j].Code
	})

	return intersections
}

type cut struct {
	pos  float64
	code string
}

// buildBlocks orders the intersections lying on one street by arc-length
// position and emits one block per consecutive pair, including the two
// open ends. Pieces shorter than the minimum block length are merged into
// their neighbor.
func buildBlocks(net *street_net, intersections []*Intersection, opts *Options) []*Block {

	st := net.street

	cuts := make([]cut, 0)

	for _, x := range intersections {

		switch st.Code {
		case x.StreetACode:
			cuts = append(cuts, cut{pos: clampPos(x.PositionA, net.length), code: x.Code})
		case x.StreetBCode:
			cuts = append(cuts, cut{pos: clampPos(x.PositionB, net.length), code: x.Code})
		}
	}

	if len(cuts) == 0 {

		b := &Block{
			Code:        fmt.Sprintf("%s-%02d", st.Code, 1),
			StreetCode:  st.Code,
			DoorNumbers: st.DoorNumbers,
			Geometry:    st.Geometry,
		}

		return []*Block{b}
	}

	sort.Slice(cuts, func(i, j int) bool {

		if cuts[i].pos != cuts[j].pos {
			return cuts[i].pos < cuts[j].pos
		}

		return cuts[i].code < cuts[j].code
	})

	type piece struct {
		from cut
		to   cut
	}

	boundaries := make([]cut, 0, len(cuts)+2)
	boundaries = append(boundaries, cut{pos: 0})
	boundaries = append(boundaries, cuts...)
	boundaries = append(boundaries, cut{pos: net.length})

	pieces := make([]piece, 0, len(boundaries)-1)

	for i := 1; i < len(boundaries); i++ {
		pieces = append(pieces, piece{from: boundaries[i-1], to: boundaries[i]})
	}

	merged := make([]piece, 0, len(pieces))

	for _, p := range pieces {

		if p.to.pos-p.from.pos < opts.MinBlockLength && len(merged) > 0 {

			last := &merged[len(merged)-1]
			last.to.pos = p.to.pos

			// The open street end carries no code; keep the absorbed
			// intersection's code on the surviving boundary.
			if p.to.code != "" {
				last.to.code = p.to.code
			}

			continue
		}

		merged = append(merged, p)
	}

	// A dangling stub at the street start merges forward instead. The
	// surviving block keeps its intersection code and extends to the
	// street start.
	if len(merged) > 1 && merged[0].to.pos-merged[0].from.pos < opts.MinBlockLength {
		merged[1].from.pos = merged[0].from.pos
		merged = merged[1:]
	}

	blocks := make([]*Block, 0, len(merged))

	for i, p := range merged {

		f0 := p.from.pos / net.length
		f1 := p.to.pos / net.length

		b := &Block{
			Code:                 fmt.Sprintf("%s-%02d", st.Code, i+1),
			StreetCode:           st.Code,
			FromIntersectionCode: p.from.code,
			ToIntersectionCode:   p.to.code,
			DoorNumbers:          interpolateDoorNumbers(st.DoorNumbers, f0, f1),
			Geometry:             substring(st, p.from.pos, p.to.pos),
		}

		blocks = append(blocks, b)
	}

	return blocks
}

func clampPos(pos float64, length float64) float64 {
	return math.Min(math.Max(pos, 0), length)
}

// interpolateDoorNumbers distributes a street's address-number ranges onto
// a block by its arc-length fractions. Sides with no data stay zero.
func interpolateDoorNumbers(dn streets.DoorNumbers, f0 float64, f1 float64) streets.DoorNumbers {

	out := streets.DoorNumbers{}
	out.StartLeft, out.EndLeft = interpolateSide(dn.StartLeft, dn.EndLeft, f0, f1)
	out.StartRight, out.EndRight = interpolateSide(dn.StartRight, dn.EndRight, f0, f1)

	return out
}

func interpolateSide(start int64, end int64, f0 float64, f1 float64) (int64, int64) {

	if start == 0 && end == 0 {
		return 0, 0
	}

	span := float64(end - start)

	from := start + int64(math.Round(f0*span))
	to := start + int64(math.Round(f1*span))

	return from, to
}
