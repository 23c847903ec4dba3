package seagraph

import (
	"github.com/golang/geo/s2"

	"marlin/searoutex/pkg/catalog"
	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/geo"
	"marlin/searoutex/pkg/util"
)

const earthRadiusNm = 3440.065

// vertexKey dedupes coordinates at ~0.1 m so lanes that share endpoints in
// the dataset actually connect in the graph.
type vertexKey struct {
	lat, lon float64
}

func keyOf(c datastructure.Coordinate) vertexKey {
	return vertexKey{lat: util.RoundFloat(c.Lat, 6), lon: util.RoundFloat(c.Lon, 6)}
}

type graphEdge struct {
	to       int32
	weightNm float64
}

// LaneGraph is the undirected weighted graph induced by the lane catalog's
// polyline vertices. Edge weights are great-circle distances in nautical
// miles. Built once at startup, read-only afterwards.
type LaneGraph struct {
	coords []datastructure.Coordinate
	adj    [][]graphEdge
	byKey  map[vertexKey]int32
}

// BuildLaneGraph folds every catalog polyline of every class into one
// connected structure.
func BuildLaneGraph(rc *catalog.RouteCatalog) *LaneGraph {
	g := &LaneGraph{byKey: make(map[vertexKey]int32)}

	for _, class := range datastructure.RouteClasses {
		for _, segment := range rc.Segments(class) {
			prev := int32(-1)
			for _, c := range segment.Coords {
				id := g.ensureVertex(c)
				if prev >= 0 && prev != id {
					g.addEdge(prev, id)
				}
				prev = id
			}
		}
	}
	return g
}

func (g *LaneGraph) ensureVertex(c datastructure.Coordinate) int32 {
	key := keyOf(c)
	if id, ok := g.byKey[key]; ok {
		return id
	}
	id := int32(len(g.coords))
	g.byKey[key] = id
	g.coords = append(g.coords, c)
	g.adj = append(g.adj, nil)
	return id
}

func (g *LaneGraph) addEdge(u, v int32) {
	w := sphericalDistanceNm(g.coords[u], g.coords[v])
	g.adj[u] = append(g.adj[u], graphEdge{to: v, weightNm: w})
	g.adj[v] = append(g.adj[v], graphEdge{to: u, weightNm: w})
}

func (g *LaneGraph) NumVertices() int {
	return len(g.coords)
}

func (g *LaneGraph) Coordinate(id int32) datastructure.Coordinate {
	return g.coords[id]
}

// Snap returns the graph vertex closest to the point, preferring vertices
// of the catalog's bounding-box candidates and falling back to a full scan
// when the spatial indices have nothing. Returns -1 on an empty graph.
func (g *LaneGraph) Snap(rc *catalog.RouteCatalog, point datastructure.Coordinate) int32 {
	if len(g.coords) == 0 {
		return -1
	}

	best := int32(-1)
	bestDist := -1.0
	consider := func(c datastructure.Coordinate) {
		id, ok := g.byKey[keyOf(c)]
		if !ok {
			return
		}
		d := geo.PlanarDistance(point, g.coords[id])
		if bestDist < 0 || d < bestDist {
			best, bestDist = id, d
		}
	}

	for _, class := range datastructure.RouteClasses {
		for _, segment := range rc.Nearest(class, point, 3) {
			for _, c := range segment.Coords {
				consider(c)
			}
		}
	}
	if best >= 0 {
		return best
	}

	for id := range g.coords {
		d := geo.PlanarDistance(point, g.coords[id])
		if bestDist < 0 || d < bestDist {
			best, bestDist = int32(id), d
		}
	}
	return best
}

func sphericalDistanceNm(a, b datastructure.Coordinate) float64 {
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lon))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return pa.Distance(pb).Radians() * earthRadiusNm
}
