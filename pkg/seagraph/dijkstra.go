package seagraph

import (
	"math"

	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/util"
)

// ShortestPath runs a bidirectional Dijkstra between two graph vertices and
// returns the vertex coordinates of the best path plus its length in
// nautical miles. ok is false when the vertices live in disconnected
// components.
func (g *LaneGraph) ShortestPath(from, to int32) ([]datastructure.Coordinate, float64, bool) {
	if from < 0 || to < 0 || int(from) >= len(g.coords) || int(to) >= len(g.coords) {
		return nil, -1, false
	}
	if from == to {
		return []datastructure.Coordinate{g.coords[from]}, 0, true
	}

	forwQ := newMinHeap[int32]()
	backQ := newMinHeap[int32]()

	df := map[int32]float64{from: 0}
	db := map[int32]float64{to: 0}

	forwQ.insert(pqNode[int32]{rank: 0, item: from})
	backQ.insert(pqNode[int32]{rank: 0, item: to})

	estimate := math.MaxFloat64
	bestCommonVertex := int32(-1)

	cameFromf := map[int32]int32{from: -1}
	cameFromb := map[int32]int32{to: -1}

	frontFinished := false
	backFinished := false

	frontier, otherFrontier := forwQ, backQ
	dist, otherDist := df, db
	cameFrom, otherCameFrom := cameFromf, cameFromb
	turnF := true

	for {
		if frontier.size() == 0 {
			if turnF {
				frontFinished = true
			} else {
				backFinished = true
			}
		}
		if frontFinished && backFinished {
			break
		}

		if smallest, err := frontier.getMin(); err != nil || smallest.rank >= estimate {
			// the cheapest frontier node can no longer beat the candidate path
			if turnF {
				frontFinished = true
			} else {
				backFinished = true
			}
		} else {
			node, _ := frontier.extractMin()

			for _, edge := range g.adj[node.item] {
				newCost := edge.weightNm + dist[node.item]
				old, seen := dist[edge.to]
				if !seen {
					dist[edge.to] = newCost
					frontier.insert(pqNode[int32]{rank: newCost, item: edge.to})
					cameFrom[edge.to] = node.item
				} else if newCost < old {
					dist[edge.to] = newCost
					frontier.decreaseKey(pqNode[int32]{rank: newCost, item: edge.to})
					cameFrom[edge.to] = node.item
				}

				if otherCost, meet := otherDist[edge.to]; meet {
					if pathDistance := newCost + otherCost; pathDistance < estimate {
						estimate = pathDistance
						bestCommonVertex = edge.to
					}
				}
			}
		}

		otherFinished := (turnF && backFinished) || (!turnF && frontFinished)
		if !otherFinished {
			frontier, otherFrontier = otherFrontier, frontier
			dist, otherDist = otherDist, dist
			cameFrom, otherCameFrom = otherCameFrom, cameFrom
			turnF = !turnF
		}
	}

	if bestCommonVertex < 0 {
		return nil, -1, false
	}
	return g.assemblePath(bestCommonVertex, cameFromf, cameFromb), estimate, true
}

// assemblePath stitches the forward walk (meeting vertex back to the
// source, reversed) onto the backward walk (meeting vertex out to the
// target).
func (g *LaneGraph) assemblePath(commonVertex int32, cameFromf, cameFromb map[int32]int32) []datastructure.Coordinate {
	fPath := make([]datastructure.Coordinate, 0)
	for v := commonVertex; v != -1; {
		fPath = append(fPath, g.coords[v])
		prev, ok := cameFromf[v]
		if !ok {
			break
		}
		v = prev
	}
	util.ReverseG(fPath)

	path := fPath
	for v, ok := cameFromb[commonVertex]; ok && v != -1; v, ok = cameFromb[v] {
		path = append(path, g.coords[v])
	}
	return path
}
