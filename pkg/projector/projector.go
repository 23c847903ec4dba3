package projector

import (
	"errors"

	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/geo"
)

// SpacedWaypoints walks a path and emits waypoints spaced by the distance
// the vessel covers in one observation window (speed * duration, nautical
// miles). The distance counter resets to a full spacing after every emitted
// waypoint. Returning fewer waypoints than requested just means the path
// ran out; it is not an error.
func SpacedWaypoints(path []datastructure.Coordinate, speedKnots, durationHours float64, count int) []datastructure.Coordinate {
	spacing := speedKnots * durationHours
	if spacing <= 0 || count <= 0 || len(path) < 2 {
		return nil
	}

	waypoints := make([]datastructure.Coordinate, 0, count)
	current := path[0]
	remaining := spacing
	idx := 1

	for idx < len(path) && len(waypoints) < count {
		segmentNm := geo.DistanceNm(current, path[idx])

		if segmentNm < remaining {
			remaining -= segmentNm
			current = path[idx]
			idx++
			continue
		}

		bisected, err := geo.BisectPoint(current, path[idx], remaining)
		if err != nil {
			// coincident vertices, skip the dead segment
			if errors.Is(err, domain.ErrDegenerateGeometry) {
				current = path[idx]
				idx++
				continue
			}
			return waypoints
		}

		waypoints = append(waypoints, bisected)
		current = bisected
		remaining = spacing
	}

	return waypoints
}

// NextVertices projects the query point onto the path, infers whether the
// vessel travels the path forward or in reverse from its heading, and
// returns up to count subsequent raw path vertices in that direction. No
// distance spacing; short-range lookahead only.
func NextVertices(path []datastructure.Coordinate, point datastructure.Coordinate, heading float64, count int) []datastructure.Coordinate {
	vertices, _ := nextVerticesDirected(path, point, heading, count)
	return vertices
}

// TravelDirection reports whether a vessel on the given heading traverses
// the path in its natural coordinate order. The polyline's forward
// direction is arbitrary relative to the vessel, so anything more than 90
// degrees off the local bearing counts as reverse travel.
func TravelDirection(path []datastructure.Coordinate, point datastructure.Coordinate, heading float64) datastructure.Direction {
	_, direction := nextVerticesDirected(path, point, heading, 1)
	return direction
}

func nextVerticesDirected(path []datastructure.Coordinate, point datastructure.Coordinate, heading float64, count int) ([]datastructure.Coordinate, datastructure.Direction) {
	direction := datastructure.DirectionForward
	if count <= 0 {
		return nil, direction
	}

	proj, ok := geo.ProjectOntoPolyline(path, point)
	if !ok {
		return nil, direction
	}

	segIdx := proj.SegmentIdx
	segmentHeading := geo.Bearing(path[segIdx], path[segIdx+1])
	if geo.CircularDifference(heading, segmentHeading) > 90 {
		direction = datastructure.DirectionReverse
	}

	vertices := make([]datastructure.Coordinate, 0, count)
	if direction == datastructure.DirectionForward {
		for i := segIdx + 1; i < len(path) && len(vertices) < count; i++ {
			vertices = append(vertices, path[i])
		}
	} else {
		for i := segIdx; i >= 0 && len(vertices) < count; i-- {
			vertices = append(vertices, path[i])
		}
	}

	return vertices, direction
}

// BuildPlan assembles the immutable waypoint plan for one hop along a
// resolved path.
func BuildPlan(position datastructure.Coordinate, heading, speedKnots, durationHours float64, count int,
	path []datastructure.Coordinate, endAtPort bool) datastructure.WaypointPlan {

	plan := datastructure.WaypointPlan{
		CurrentPosition: position,
		CurrentHeading:  heading,
		CurrentSpeed:    speedKnots,
		Waypoints:       SpacedWaypoints(path, speedKnots, durationHours, count),
		ObservedHours:   durationHours,
		NumObservations: count,
		EndAtPort:       endAtPort,
	}
	if len(path) > 0 {
		plan.RouteStart = path[0]
		plan.RouteEnd = path[len(path)-1]
	}
	return plan
}
