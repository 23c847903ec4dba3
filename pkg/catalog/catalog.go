package catalog

import (
	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/datastructure"

	"github.com/dhconnelly/rtreego"
)

// RouteCatalog owns the classified lane polylines and one bounding-box
// spatial index per route class. Lifecycle is build-then-query: Ingest all
// classes, call BuildIndices exactly once, then the catalog is read-only and
// safe for concurrent queries.
type RouteCatalog struct {
	segments [3][]datastructure.RouteSegment
	indices  [3]*rtreego.Rtree
	built    bool
}

func NewRouteCatalog() *RouteCatalog {
	return &RouteCatalog{}
}

// Ingest appends polylines to a class's collection. Degenerate polylines
// with fewer than two points are rejected, not stored. Returns how many
// polylines were kept.
func (rc *RouteCatalog) Ingest(class datastructure.RouteClass, polylines [][]datastructure.Coordinate) int {
	kept := 0
	for _, coords := range polylines {
		if len(coords) < 2 {
			continue
		}
		rc.segments[class] = append(rc.segments[class], datastructure.RouteSegment{
			Class:  class,
			ID:     len(rc.segments[class]) + 1,
			Coords: coords,
		})
		kept++
	}
	return kept
}

// BuildIndices constructs the per-class r-trees from the accumulated
// segments. Call once, after all ingestion and before any query.
func (rc *RouteCatalog) BuildIndices() {
	for _, class := range datastructure.RouteClasses {
		tree := rtreego.NewTree(2, 25, 50)
		for i := range rc.segments[class] {
			tree.Insert(newLaneRect(&rc.segments[class][i]))
		}
		rc.indices[class] = tree
	}
	rc.built = true
}

// Nearest returns up to k segments of one class ordered by bounding-box
// distance to the query point. An unbuilt or empty index yields no
// candidates rather than an error, so the matcher's multi-class loop stays
// uniform.
func (rc *RouteCatalog) Nearest(class datastructure.RouteClass, point datastructure.Coordinate, k int) []*datastructure.RouteSegment {
	idx := rc.indices[class]
	if idx == nil || idx.Size() == 0 {
		return nil
	}

	spatials := idx.NearestNeighbors(k, rtreego.Point{point.Lon, point.Lat})
	segments := make([]*datastructure.RouteSegment, 0, len(spatials))
	for _, s := range spatials {
		if s == nil {
			continue
		}
		segments = append(segments, s.(*laneRect).segment)
	}
	return segments
}

// Len reports how many segments a class holds.
func (rc *RouteCatalog) Len(class datastructure.RouteClass) int {
	return len(rc.segments[class])
}

// Ready reports whether BuildIndices has run over a non-empty catalog.
func (rc *RouteCatalog) Ready() bool {
	if !rc.built {
		return false
	}
	for _, class := range datastructure.RouteClasses {
		if len(rc.segments[class]) > 0 {
			return true
		}
	}
	return false
}

// SegmentByID resolves a 1-based identity back to a segment. With a class
// it searches only that class; without one it walks the classes in priority
// order, offsetting the index by the prior classes' counts.
func (rc *RouteCatalog) SegmentByID(class *datastructure.RouteClass, id int) (*datastructure.RouteSegment, error) {
	idx := id - 1
	if idx < 0 {
		return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "route id %d not found", id)
	}

	if class != nil {
		if idx < len(rc.segments[*class]) {
			return &rc.segments[*class][idx], nil
		}
		return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "route id %d not found in class %s", id, *class)
	}

	for _, c := range datastructure.RouteClasses {
		if idx < len(rc.segments[c]) {
			return &rc.segments[c][idx], nil
		}
		idx -= len(rc.segments[c])
	}
	return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "route id %d not found", id)
}

// Endpoints returns the first and last coordinate of the resolved segment.
func (rc *RouteCatalog) Endpoints(class *datastructure.RouteClass, id int) (start, end datastructure.Coordinate, err error) {
	segment, err := rc.SegmentByID(class, id)
	if err != nil {
		return datastructure.Coordinate{}, datastructure.Coordinate{}, err
	}
	return segment.Start(), segment.End(), nil
}

// Segments exposes a class's polylines for graph construction and snapshot
// persistence. Callers must not mutate them.
func (rc *RouteCatalog) Segments(class datastructure.RouteClass) []datastructure.RouteSegment {
	return rc.segments[class]
}
