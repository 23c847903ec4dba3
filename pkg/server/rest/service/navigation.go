package service

import (
	"context"

	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/matcher"
)

const portRadiusNm = 10.0

type RouteMatcher interface {
	Match(ctx context.Context, point datastructure.Coordinate, heading,
		distanceThresholdNm, headingThresholdDeg float64) (*datastructure.RouteMatch, error)
	NearestPerClass(point datastructure.Coordinate) []matcher.ClassCandidate
}

type TrackSolver interface {
	Route(ctx context.Context, origin, destination datastructure.Coordinate) ([]datastructure.Coordinate, error)
	RouteVia(ctx context.Context, origin, via, destination datastructure.Coordinate) ([]datastructure.Coordinate, error)
}

type VoyageChainer interface {
	ChainVoyage(ctx context.Context, position datastructure.Coordinate,
		heading, speedKnots, durationHours float64, count int) ([]datastructure.WaypointPlan, error)
}

type PortOracle interface {
	NearPort(ctx context.Context, point datastructure.Coordinate, radiusNm float64) (bool, error)
}

// WaypointBuilder turns a resolved track into a waypoint plan. Kept as a
// function value so the service stays testable without real geometry.
type WaypointBuilder func(position datastructure.Coordinate, heading, speedKnots, durationHours float64,
	count int, path []datastructure.Coordinate, endAtPort bool) datastructure.WaypointPlan

type NavigationService struct {
	matcher RouteMatcher
	solver  TrackSolver
	chainer VoyageChainer
	ports   PortOracle
	build   WaypointBuilder
}

func NewNavigationService(m RouteMatcher, solver TrackSolver, chainer VoyageChainer,
	ports PortOracle, build WaypointBuilder) *NavigationService {
	return &NavigationService{matcher: m, solver: solver, chainer: chainer, ports: ports, build: build}
}

// NextWaypoints matches the vessel's observed position and heading to a
// lane and projects its future positions along the solved track. The
// destination is unknown; the matched lane's far end stands in for it.
func (uc *NavigationService) NextWaypoints(ctx context.Context, position datastructure.Coordinate,
	heading, speedKnots, durationHours float64, count int,
	distanceThresholdNm, headingThresholdDeg float64) (datastructure.WaypointPlan, *datastructure.RouteMatch, error) {

	match, err := uc.matcher.Match(ctx, position, heading, distanceThresholdNm, headingThresholdDeg)
	if err != nil {
		return datastructure.WaypointPlan{}, nil, err
	}
	if match == nil {
		return datastructure.WaypointPlan{}, nil, domain.WrapErrorf(nil, domain.ErrNotFound,
			"no shipping lane within %.0f nm and %.0f deg of (%f, %f)",
			distanceThresholdNm, headingThresholdDeg, position.Lat, position.Lon)
	}

	plan := uc.build(position, heading, speedKnots, durationHours, count, match.Path, uc.nearPort(ctx, match.EndingPoint))
	return plan, match, nil
}

// WaypointsToDestination projects waypoints along the solved track to a
// known destination, optionally via an intermediate point.
func (uc *NavigationService) WaypointsToDestination(ctx context.Context, position datastructure.Coordinate,
	heading, speedKnots, durationHours float64, count int,
	destination datastructure.Coordinate, via *datastructure.Coordinate) (datastructure.WaypointPlan, error) {

	var (
		track []datastructure.Coordinate
		err   error
	)
	if via != nil {
		track, err = uc.solver.RouteVia(ctx, position, *via, destination)
	} else {
		track, err = uc.solver.Route(ctx, position, destination)
	}
	if err != nil {
		return datastructure.WaypointPlan{}, err
	}

	return uc.build(position, heading, speedKnots, durationHours, count, track, uc.nearPort(ctx, destination)), nil
}

// ChainVoyage delegates to the multi-hop chainer.
func (uc *NavigationService) ChainVoyage(ctx context.Context, position datastructure.Coordinate,
	heading, speedKnots, durationHours float64, count int) ([]datastructure.WaypointPlan, error) {
	return uc.chainer.ChainVoyage(ctx, position, heading, speedKnots, durationHours, count)
}

// NearestRoutes reports the exact-nearest lane of every class, unfiltered.
func (uc *NavigationService) NearestRoutes(ctx context.Context, position datastructure.Coordinate) ([]matcher.ClassCandidate, error) {
	candidates := uc.matcher.NearestPerClass(position)
	if len(candidates) == 0 {
		return nil, domain.WrapErrorf(nil, domain.ErrDataUnavailable, "route catalog is empty")
	}
	return candidates, nil
}

func (uc *NavigationService) nearPort(ctx context.Context, point datastructure.Coordinate) bool {
	if uc.ports == nil {
		return false
	}
	near, err := uc.ports.NearPort(ctx, point, portRadiusNm)
	if err != nil {
		return false
	}
	return near
}
