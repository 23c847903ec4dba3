package service_test

import (
	"context"
	"errors"
	"testing"

	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/matcher"
	"marlin/searoutex/pkg/projector"
	"marlin/searoutex/pkg/server/rest/service"

	"github.com/stretchr/testify/assert"
)

func coord(lat, lon float64) datastructure.Coordinate {
	return datastructure.NewCoordinate(lat, lon)
}

type matcherStub struct {
	match      *datastructure.RouteMatch
	candidates []matcher.ClassCandidate
	err        error
}

func (s *matcherStub) Match(_ context.Context, _ datastructure.Coordinate, _, _, _ float64) (*datastructure.RouteMatch, error) {
	return s.match, s.err
}

func (s *matcherStub) NearestPerClass(_ datastructure.Coordinate) []matcher.ClassCandidate {
	return s.candidates
}

type solverStub struct {
	viaCalled bool
}

func (s *solverStub) Route(_ context.Context, origin, destination datastructure.Coordinate) ([]datastructure.Coordinate, error) {
	return []datastructure.Coordinate{origin, destination}, nil
}

func (s *solverStub) RouteVia(_ context.Context, origin, via, destination datastructure.Coordinate) ([]datastructure.Coordinate, error) {
	s.viaCalled = true
	return []datastructure.Coordinate{origin, via, destination}, nil
}

type chainerStub struct {
	plans []datastructure.WaypointPlan
}

func (s *chainerStub) ChainVoyage(_ context.Context, _ datastructure.Coordinate, _, _, _ float64, _ int) ([]datastructure.WaypointPlan, error) {
	return s.plans, nil
}

type portStub struct {
	near bool
	err  error
}

func (s *portStub) NearPort(_ context.Context, _ datastructure.Coordinate, _ float64) (bool, error) {
	return s.near, s.err
}

func newService(m *matcherStub, solver *solverStub, ports *portStub) *service.NavigationService {
	return service.NewNavigationService(m, solver, &chainerStub{}, ports, projector.BuildPlan)
}

func TestNextWaypoints(t *testing.T) {
	t.Run("matched lane yields a plan", func(t *testing.T) {
		m := &matcherStub{match: &datastructure.RouteMatch{
			RouteID:     1,
			Class:       datastructure.RouteClassMajor,
			EndingPoint: coord(0, 2),
			Path:        []datastructure.Coordinate{coord(0, 0), coord(0, 1), coord(0, 2)},
		}}
		svc := newService(m, &solverStub{}, &portStub{near: true})

		plan, match, err := svc.NextWaypoints(context.Background(), coord(0.02, 0.1), 90, 30, 2, 10, 25, 45)
		assert.NoError(t, err)
		assert.Equal(t, 1, match.RouteID)
		assert.True(t, plan.EndAtPort)
		assert.NotEmpty(t, plan.Waypoints)
	})

	t.Run("no qualifying lane is a not-found error", func(t *testing.T) {
		svc := newService(&matcherStub{}, &solverStub{}, &portStub{})

		_, _, err := svc.NextWaypoints(context.Background(), coord(40, -40), 90, 30, 2, 10, 25, 45)
		assert.Error(t, err)
	})

	t.Run("port oracle failure degrades to no port", func(t *testing.T) {
		m := &matcherStub{match: &datastructure.RouteMatch{
			EndingPoint: coord(0, 2),
			Path:        []datastructure.Coordinate{coord(0, 0), coord(0, 2)},
		}}
		svc := newService(m, &solverStub{}, &portStub{err: errors.New("overpass down")})

		plan, _, err := svc.NextWaypoints(context.Background(), coord(0.02, 0.1), 90, 30, 2, 10, 25, 45)
		assert.NoError(t, err)
		assert.False(t, plan.EndAtPort)
	})
}

func TestWaypointsToDestination(t *testing.T) {
	t.Run("direct track", func(t *testing.T) {
		solver := &solverStub{}
		svc := newService(&matcherStub{}, solver, &portStub{})

		plan, err := svc.WaypointsToDestination(context.Background(),
			coord(0, 0), 90, 30, 2, 10, coord(0, 2), nil)
		assert.NoError(t, err)
		assert.False(t, solver.viaCalled)
		assert.Equal(t, coord(0, 2), plan.RouteEnd)
		assert.NotEmpty(t, plan.Waypoints)
	})

	t.Run("via point routes both legs", func(t *testing.T) {
		solver := &solverStub{}
		svc := newService(&matcherStub{}, solver, &portStub{})

		via := coord(0, 1)
		_, err := svc.WaypointsToDestination(context.Background(),
			coord(0, 0), 90, 30, 2, 10, coord(0, 2), &via)
		assert.NoError(t, err)
		assert.True(t, solver.viaCalled)
	})
}

func TestNearestRoutes(t *testing.T) {
	t.Run("candidates pass through", func(t *testing.T) {
		m := &matcherStub{candidates: []matcher.ClassCandidate{
			{Class: datastructure.RouteClassMajor, RouteID: 1, DistanceNm: 1.2},
		}}
		svc := newService(m, &solverStub{}, &portStub{})

		got, err := svc.NearestRoutes(context.Background(), coord(0, 0))
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("empty catalog is an error", func(t *testing.T) {
		svc := newService(&matcherStub{}, &solverStub{}, &portStub{})
		_, err := svc.NearestRoutes(context.Background(), coord(0, 0))
		assert.Error(t, err)
	})
}
