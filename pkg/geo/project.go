package geo

import (
	"marlin/searoutex/pkg/datastructure"
)

// PolylineProjection is the nearest point on a piecewise-linear path to a
// query coordinate, together with where along the path it sits.
type PolylineProjection struct {
	Point datastructure.Coordinate
	// SegmentIdx is the index of the path segment containing Point
	// (segment i runs coords[i] -> coords[i+1]).
	SegmentIdx int
	// AlongTrack is the cumulative path distance from the first vertex to
	// Point, in degrees.
	AlongTrack float64
	// PerpDistance is the chord distance between the query point and Point,
	// in degrees.
	PerpDistance float64
}

// ProjectOntoSegment clamps the planar projection of p onto the chord a->b.
func ProjectOntoSegment(a, b, p datastructure.Coordinate) datastructure.Coordinate {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon

	lenSq := dLat*dLat + dLon*dLon
	if lenSq == 0 {
		return a
	}

	t := ((p.Lat-a.Lat)*dLat + (p.Lon-a.Lon)*dLon) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return datastructure.Coordinate{
		Lat: a.Lat + t*dLat,
		Lon: a.Lon + t*dLon,
	}
}

// ProjectOntoPolyline finds the nearest point on the full piecewise-linear
// path, not just a bounding box. Paths with fewer than two vertices yield
// ok=false.
func ProjectOntoPolyline(coords []datastructure.Coordinate, p datastructure.Coordinate) (PolylineProjection, bool) {
	if len(coords) < 2 {
		return PolylineProjection{}, false
	}

	best := PolylineProjection{}
	bestDist := -1.0
	cumulative := 0.0

	for i := 0; i < len(coords)-1; i++ {
		candidate := ProjectOntoSegment(coords[i], coords[i+1], p)
		dist := PlanarDistance(candidate, p)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = PolylineProjection{
				Point:        candidate,
				SegmentIdx:   i,
				AlongTrack:   cumulative + PlanarDistance(coords[i], candidate),
				PerpDistance: dist,
			}
		}
		cumulative += PlanarDistance(coords[i], coords[i+1])
	}

	return best, true
}
