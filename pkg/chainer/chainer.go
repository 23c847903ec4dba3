package chainer

import (
	"context"

	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/geo"
	"marlin/searoutex/pkg/projector"
)

const (
	startDistanceNm = 5.0
	stepDistanceNm  = 25.0
	maxDistanceNm   = 100.0
	startHeadingDeg = 5.0
	stepHeadingDeg  = 5.0
	maxHeadingDeg   = 45.0
	advanceNm       = 10.0
	portRadiusNm    = 10.0
	defaultMaxHops  = 25
	maxSearchPerHop = 12
)

// SearchThresholds is the widening acceptance window for one hop's lane
// search. Starts tight so the obvious lane wins, escalates when nothing
// qualifies.
type SearchThresholds struct {
	DistanceNm float64
	HeadingDeg float64
}

func DefaultThresholds() SearchThresholds {
	return SearchThresholds{DistanceNm: startDistanceNm, HeadingDeg: startHeadingDeg}
}

// Escalate widens both thresholds one step, respecting their caps. Returns
// false once both are already capped.
func (t *SearchThresholds) Escalate() bool {
	moved := false
	if t.DistanceNm < maxDistanceNm {
		t.DistanceNm += stepDistanceNm
		if t.DistanceNm > maxDistanceNm {
			t.DistanceNm = maxDistanceNm
		}
		moved = true
	}
	if t.HeadingDeg < maxHeadingDeg {
		t.HeadingDeg += stepHeadingDeg
		if t.HeadingDeg > maxHeadingDeg {
			t.HeadingDeg = maxHeadingDeg
		}
		moved = true
	}
	return moved
}

// RouteMatcher is what the chainer needs from the matching engine.
type RouteMatcher interface {
	Match(ctx context.Context, point datastructure.Coordinate, heading,
		distanceThresholdNm, headingThresholdDeg float64) (*datastructure.RouteMatch, error)
}

// PortOracle answers whether a coordinate lies near a known port. A failed
// lookup is treated as "no port": the voyage keeps chaining rather than
// terminating on infrastructure noise.
type PortOracle interface {
	NearPort(ctx context.Context, point datastructure.Coordinate, radiusNm float64) (bool, error)
}

type Chainer struct {
	matcher RouteMatcher
	ports   PortOracle
	maxHops int
}

func New(m RouteMatcher, ports PortOracle) *Chainer {
	return &Chainer{matcher: m, ports: ports, maxHops: defaultMaxHops}
}

// ChainVoyage projects the vessel's whole remaining voyage as a sequence of
// waypoint plans, one per matched lane. Each hop searches with widening
// thresholds, creeping the position ahead along the heading on every miss,
// then hands over to the next hop from the matched lane's far end. The
// chain terminates at a port, at open water with no matchable lane, or at
// the hop ceiling. Each plan records the position its hop was queried
// from, not any position the search crept to.
func (c *Chainer) ChainVoyage(ctx context.Context, position datastructure.Coordinate,
	heading, speedKnots, durationHours float64, count int) ([]datastructure.WaypointPlan, error) {

	plans := make([]datastructure.WaypointPlan, 0, 4)
	pos, hdg := position, heading

	for hop := 0; hop < c.maxHops; hop++ {
		match, err := c.search(ctx, pos, hdg)
		if err != nil {
			return plans, err
		}
		if match == nil {
			break
		}

		endAtPort := c.nearPort(ctx, match.EndingPoint)
		plan := projector.BuildPlan(pos, hdg, speedKnots, durationHours, count, match.Path, endAtPort)
		plans = append(plans, plan)

		if endAtPort || len(plan.Waypoints) == 0 {
			break
		}

		// hand over: aim from the last projected waypoint at the lane's far
		// end, then start the next search just past it so the lane just
		// travelled cannot immediately rematch at zero distance
		last := plan.Waypoints[len(plan.Waypoints)-1]
		if last != match.EndingPoint {
			hdg = geo.Bearing(last, match.EndingPoint)
		}
		pos = geo.DestinationPoint(match.EndingPoint, hdg, advanceNm)
	}

	return plans, nil
}

// search runs one hop's lane search. Every miss creeps the query point
// forward along the heading and widens the window one step; thresholds
// never shrink within a hop. A nil match means the area is exhausted.
func (c *Chainer) search(ctx context.Context, position datastructure.Coordinate,
	heading float64) (*datastructure.RouteMatch, error) {

	pos := position
	thresholds := DefaultThresholds()

	for step := 0; step < maxSearchPerHop; step++ {
		match, err := c.matcher.Match(ctx, pos, heading, thresholds.DistanceNm, thresholds.HeadingDeg)
		if err != nil {
			return nil, err
		}
		if match != nil {
			return match, nil
		}

		pos = geo.DestinationPoint(pos, heading, advanceNm)
		thresholds.Escalate()
	}
	return nil, nil
}

func (c *Chainer) nearPort(ctx context.Context, point datastructure.Coordinate) bool {
	if c.ports == nil {
		return false
	}
	near, err := c.ports.NearPort(ctx, point, portRadiusNm)
	if err != nil {
		return false
	}
	return near
}
