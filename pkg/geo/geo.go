package geo

import (
	"math"

	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/datastructure"
)

// DegreesToNauticalMiles is the fixed planar conversion used everywhere in
// the engine. 1 degree ~ 60 nautical miles. This is a deliberate
// approximation, not geodesic truth; keep it consistent so distance
// accounting stays in one unit system.
const DegreesToNauticalMiles = 60.0

const earthRadiusNm = 3440.065

//	φ1,λ1 is the start point, φ2,λ2 the end point
//	 	φ is latitude, λ is longitude
//
// https://www.movable-type.co.uk/scripts/latlong.html
func Bearing(from, to datastructure.Coordinate) float64 {
	p1LatRad := degToRad(from.Lat)
	p2LatRad := degToRad(to.Lat)

	diffLon := degToRad(to.Lon - from.Lon)

	y := math.Sin(diffLon) * math.Cos(p2LatRad)
	x := math.Cos(p1LatRad)*math.Sin(p2LatRad) - math.Sin(p1LatRad)*math.Cos(p2LatRad)*math.Cos(diffLon)
	theta := math.Atan2(y, x)

	bearing := math.Mod((theta*180/math.Pi)+360, 360)
	return bearing
}

// CircularDifference is the absolute difference between two headings on the
// compass circle, always in [0, 180].
func CircularDifference(h1, h2 float64) float64 {
	diff := math.Abs(h1 - h2)
	return math.Min(diff, 360-diff)
}

// PlanarDistance is the straight chord length between two coordinates in
// degree space.
func PlanarDistance(a, b datastructure.Coordinate) float64 {
	latDiff := a.Lat - b.Lat
	lonDiff := a.Lon - b.Lon
	return math.Sqrt(latDiff*latDiff + lonDiff*lonDiff)
}

// DistanceNm is PlanarDistance expressed in nautical miles via the fixed
// degree conversion.
func DistanceNm(a, b datastructure.Coordinate) float64 {
	return PlanarDistance(a, b) * DegreesToNauticalMiles
}

// BisectPoint treats p1->p2 as a straight chord in degree space and returns
// the point exactly distanceNm nautical miles from p1 along it.
func BisectPoint(p1, p2 datastructure.Coordinate, distanceNm float64) (datastructure.Coordinate, error) {
	totalNm := DistanceNm(p1, p2)
	if totalNm == 0 {
		return datastructure.Coordinate{}, domain.WrapErrorf(nil, domain.ErrDegenerateGeometry,
			"cannot bisect coincident points (%f, %f)", p1.Lat, p1.Lon)
	}

	fraction := distanceNm / totalNm
	return datastructure.Coordinate{
		Lat: p1.Lat + (p2.Lat-p1.Lat)*fraction,
		Lon: p1.Lon + (p2.Lon-p1.Lon)*fraction,
	}, nil
}

// DestinationPoint is the great-circle destination from a start coordinate
// given a bearing and a distance in nautical miles. Only the chainer's
// search-advance step uses this; the interpolation walk stays planar so its
// distance accounting matches the rest of the engine.
//
// https://www.movable-type.co.uk/scripts/latlong.html
func DestinationPoint(from datastructure.Coordinate, bearingDeg, distanceNm float64) datastructure.Coordinate {
	angular := distanceNm / earthRadiusNm
	brng := degToRad(bearingDeg)
	lat1 := degToRad(from.Lat)
	lon1 := degToRad(from.Lon)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) + math.Cos(lat1)*math.Sin(angular)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2))

	return datastructure.Coordinate{
		Lat: radToDeg(lat2),
		Lon: math.Mod(radToDeg(lon2)+540, 360) - 180,
	}
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180.0
}

func radToDeg(r float64) float64 {
	return 180.0 * r / math.Pi
}
