package matcher

import (
	"context"
	"sync"

	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/catalog"
	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/geo"
	"marlin/searoutex/pkg/projector"

	"golang.org/x/exp/slices"
)

// candidateK is how many bounding-box candidates each class contributes
// before exact projection decides the real nearest lane.
const candidateK = 10

// RouteSolver resolves the navigable over-water track between two points.
// The matcher never walks raw catalog polylines directly; the solver's
// track is what waypoint projection consumes.
type RouteSolver interface {
	Route(ctx context.Context, origin, destination datastructure.Coordinate) ([]datastructure.Coordinate, error)
}

// ClassCandidate is the exact-nearest lane of one class, before any
// heading or threshold filtering.
type ClassCandidate struct {
	Class        datastructure.RouteClass
	RouteID      int
	DistanceNm   float64
	NearestPoint datastructure.Coordinate
}

type Matcher struct {
	catalog *catalog.RouteCatalog
	solver  RouteSolver
}

func New(rc *catalog.RouteCatalog, solver RouteSolver) *Matcher {
	return &Matcher{catalog: rc, solver: solver}
}

type classBest struct {
	segment    *datastructure.RouteSegment
	projection geo.PolylineProjection
	distanceNm float64
}

// bestInClass refines the bounding-box candidates of one class with exact
// polyline projection and keeps the closest.
func (m *Matcher) bestInClass(class datastructure.RouteClass, point datastructure.Coordinate) (classBest, bool) {
	best := classBest{distanceNm: -1}
	for _, segment := range m.catalog.Nearest(class, point, candidateK) {
		proj, ok := geo.ProjectOntoPolyline(segment.Coords, point)
		if !ok {
			continue
		}
		distanceNm := proj.PerpDistance * geo.DegreesToNauticalMiles
		if best.distanceNm < 0 || distanceNm < best.distanceNm {
			best = classBest{segment: segment, projection: proj, distanceNm: distanceNm}
		}
	}
	return best, best.distanceNm >= 0
}

// NearestPerClass runs the exact nearest-lane search for every class
// concurrently and returns the survivors in class priority order.
func (m *Matcher) NearestPerClass(point datastructure.Coordinate) []ClassCandidate {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		bests [3]*classBest
	)

	for _, class := range datastructure.RouteClasses {
		wg.Add(1)
		go func(class datastructure.RouteClass) {
			defer wg.Done()
			if best, ok := m.bestInClass(class, point); ok {
				mu.Lock()
				bests[class] = &best
				mu.Unlock()
			}
		}(class)
	}
	wg.Wait()

	candidates := make([]ClassCandidate, 0, len(bests))
	for _, class := range datastructure.RouteClasses {
		best := bests[class]
		if best == nil {
			continue
		}
		candidates = append(candidates, ClassCandidate{
			Class:        class,
			RouteID:      best.segment.ID,
			DistanceNm:   best.distanceNm,
			NearestPoint: best.projection.Point,
		})
	}
	return candidates
}

// Match finds the lane the vessel is most plausibly following. Each class
// contributes its exact-nearest lane; survivors must sit within the
// distance threshold and run within the heading threshold of the vessel's
// course. Among survivors the composite score decides, heading agreement
// weighted far above proximity. A nil match with a nil error means nothing
// qualified, which the caller treats as "keep searching", not a fault.
func (m *Matcher) Match(ctx context.Context, point datastructure.Coordinate, heading,
	distanceThresholdNm, headingThresholdDeg float64) (*datastructure.RouteMatch, error) {

	if !m.catalog.Ready() {
		return nil, domain.WrapErrorf(nil, domain.ErrDataUnavailable, "route catalog is empty")
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		bests [3]*classBest
	)
	for _, class := range datastructure.RouteClasses {
		wg.Add(1)
		go func(class datastructure.RouteClass) {
			defer wg.Done()
			if best, ok := m.bestInClass(class, point); ok {
				mu.Lock()
				bests[class] = &best
				mu.Unlock()
			}
		}(class)
	}
	wg.Wait()

	accepted := make([]datastructure.RouteMatch, 0, len(bests))
	for _, class := range datastructure.RouteClasses {
		best := bests[class]
		if best == nil || best.distanceNm > distanceThresholdNm {
			continue
		}

		segment := best.segment
		direction := projector.TravelDirection(segment.Coords, point, heading)
		routeHeading := m.routeHeading(segment, best.projection, point, heading)
		headingDiff := geo.CircularDifference(heading, routeHeading)
		if headingDiff > headingThresholdDeg {
			continue
		}

		match := datastructure.RouteMatch{
			RouteID:      segment.ID,
			Class:        class,
			DistanceNm:   best.distanceNm,
			ProjDistance: best.projection.AlongTrack,
			NearestPoint: best.projection.Point,
			RouteHeading: routeHeading,
			HeadingDiff:  headingDiff,
			Direction:    direction,
		}
		if direction == datastructure.DirectionForward {
			match.StartingPoint = segment.Start()
			match.EndingPoint = segment.End()
		} else {
			match.StartingPoint = segment.End()
			match.EndingPoint = segment.Start()
		}
		accepted = append(accepted, match)
	}

	if len(accepted) == 0 {
		return nil, nil
	}

	// stable keeps class priority as the tie-break
	slices.SortStableFunc(accepted, func(a, b datastructure.RouteMatch) int {
		sa, sb := matchScore(a), matchScore(b)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	})
	best := accepted[0]

	path, err := m.solver.Route(ctx, point, best.EndingPoint)
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrCollaborator,
			"resolving track to route %d end", best.RouteID)
	}
	best.Path = path
	return &best, nil
}

// routeHeading is the lane's local course at the projection, oriented by
// the vessel's direction of travel.
func (m *Matcher) routeHeading(segment *datastructure.RouteSegment, proj geo.PolylineProjection,
	point datastructure.Coordinate, heading float64) float64 {

	// the projection can land exactly on a vertex; a bearing from a point to
	// itself is meaningless, so look past it
	next := projector.NextVertices(segment.Coords, point, heading, 2)
	for _, v := range next {
		if v != proj.Point {
			return geo.Bearing(proj.Point, v)
		}
	}

	// projection landed on the terminal vertex in the travel direction, so
	// fall back to the enclosing segment's bearing
	from, to := segment.Coords[proj.SegmentIdx], segment.Coords[proj.SegmentIdx+1]
	segmentHeading := geo.Bearing(from, to)
	if geo.CircularDifference(heading, segmentHeading) > 90 {
		return geo.Bearing(to, from)
	}
	return segmentHeading
}

// matchScore blends heading agreement and proximity. Heading dominates so a
// slightly farther lane running with the vessel beats a nearer one running
// across it.
func matchScore(m datastructure.RouteMatch) float64 {
	return (m.HeadingDiff*0.9 + m.DistanceNm*0.1) / 2
}
