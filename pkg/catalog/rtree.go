package catalog

import (
	"marlin/searoutex/pkg/datastructure"

	"github.com/dhconnelly/rtreego"
)

// r-tree entries need non-zero side lengths
const bboxEpsilon = 0.0001

type laneRect struct {
	segment *datastructure.RouteSegment
	rect    rtreego.Rect
}

func (l *laneRect) Bounds() rtreego.Rect {
	return l.rect
}

func newLaneRect(segment *datastructure.RouteSegment) *laneRect {
	minLon, minLat := segment.Coords[0].Lon, segment.Coords[0].Lat
	maxLon, maxLat := minLon, minLat
	for _, c := range segment.Coords[1:] {
		if c.Lon < minLon {
			minLon = c.Lon
		}
		if c.Lon > maxLon {
			maxLon = c.Lon
		}
		if c.Lat < minLat {
			minLat = c.Lat
		}
		if c.Lat > maxLat {
			maxLat = c.Lat
		}
	}

	lonLength := maxLon - minLon
	latLength := maxLat - minLat
	if lonLength < bboxEpsilon {
		lonLength = bboxEpsilon
	}
	if latLength < bboxEpsilon {
		latLength = bboxEpsilon
	}

	rect, _ := rtreego.NewRect(rtreego.Point{minLon, minLat}, []float64{lonLength, latLength})
	return &laneRect{segment: segment, rect: rect}
}
