package datastructure

import "github.com/twpayne/go-polyline"

// RenderPath encodes a track as a Google-style polyline for compact
// transport to map frontends.
func RenderPath(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
