package seagraph

import (
	"context"
	"sync"

	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/catalog"
	"marlin/searoutex/pkg/datastructure"
)

// Solver answers point-to-point track queries over the lane graph. It is
// the engine's route solver collaborator: callers hand it raw coordinates
// and get back a navigable polyline that starts and ends exactly where
// they asked.
type Solver struct {
	catalog *catalog.RouteCatalog
	graph   *LaneGraph
}

func NewSolver(rc *catalog.RouteCatalog) *Solver {
	return &Solver{catalog: rc, graph: BuildLaneGraph(rc)}
}

func (s *Solver) Graph() *LaneGraph {
	return s.graph
}

// Route snaps both endpoints onto the lane graph, solves the shortest
// track between them, and splices the exact query coordinates onto the
// snapped ends.
func (s *Solver) Route(ctx context.Context, origin, destination datastructure.Coordinate) ([]datastructure.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrCollaborator, "track query cancelled")
	}

	fromID := s.graph.Snap(s.catalog, origin)
	toID := s.graph.Snap(s.catalog, destination)
	if fromID < 0 || toID < 0 {
		return nil, domain.WrapErrorf(nil, domain.ErrCollaborator, "lane graph has no vertices")
	}

	track, _, ok := s.graph.ShortestPath(fromID, toID)
	if !ok {
		return nil, domain.WrapErrorf(nil, domain.ErrCollaborator,
			"no navigable track between (%f,%f) and (%f,%f)", origin.Lat, origin.Lon, destination.Lat, destination.Lon)
	}

	return splice(origin, track, destination), nil
}

// RouteVia solves origin->via and via->destination as two concurrent leg
// queries and joins them at the via point.
func (s *Solver) RouteVia(ctx context.Context, origin, via, destination datastructure.Coordinate) ([]datastructure.Coordinate, error) {
	var (
		wg   sync.WaitGroup
		legA []datastructure.Coordinate
		legB []datastructure.Coordinate
		errA error
		errB error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		legA, errA = s.Route(ctx, origin, via)
	}()
	go func() {
		defer wg.Done()
		legB, errB = s.Route(ctx, via, destination)
	}()
	wg.Wait()

	if errA != nil {
		return nil, errA
	}
	if errB != nil {
		return nil, errB
	}

	joined := legA
	if len(legB) > 0 {
		// via point appears at the seam of both legs
		joined = append(joined, legB[1:]...)
	}
	return joined, nil
}

func splice(origin datastructure.Coordinate, track []datastructure.Coordinate, destination datastructure.Coordinate) []datastructure.Coordinate {
	out := make([]datastructure.Coordinate, 0, len(track)+2)
	if len(track) == 0 || track[0] != origin {
		out = append(out, origin)
	}
	out = append(out, track...)
	if out[len(out)-1] != destination {
		out = append(out, destination)
	}
	return out
}
