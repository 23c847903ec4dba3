package matcher_test

import (
	"context"
	"errors"
	"testing"

	"marlin/searoutex/pkg/catalog"
	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/matcher"

	"github.com/stretchr/testify/assert"
)

// straightSolver resolves every query as the direct chord, recording calls.
type straightSolver struct {
	calls int
	err   error
}

func (s *straightSolver) Route(_ context.Context, origin, destination datastructure.Coordinate) ([]datastructure.Coordinate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []datastructure.Coordinate{origin, destination}, nil
}

func eastLane(lat float64) []datastructure.Coordinate {
	return []datastructure.Coordinate{
		datastructure.NewCoordinate(lat, 0),
		datastructure.NewCoordinate(lat, 1),
		datastructure.NewCoordinate(lat, 2),
	}
}

func testCatalog() *catalog.RouteCatalog {
	rc := catalog.NewRouteCatalog()
	rc.Ingest(datastructure.RouteClassMajor, [][]datastructure.Coordinate{eastLane(0)})
	rc.Ingest(datastructure.RouteClassMiddle, [][]datastructure.Coordinate{eastLane(0.1)})
	rc.Ingest(datastructure.RouteClassMinor, [][]datastructure.Coordinate{eastLane(2)})
	rc.BuildIndices()
	return rc
}

func TestMatch(t *testing.T) {
	t.Run("nearest co-heading lane wins", func(t *testing.T) {
		solver := &straightSolver{}
		m := matcher.New(testCatalog(), solver)

		// 1.2 nm off the Major lane, 4.8 nm off the Middle one, eastbound
		got, err := m.Match(context.Background(), datastructure.NewCoordinate(0.02, 1), 90, 25, 45)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, datastructure.RouteClassMajor, got.Class)
		assert.Equal(t, datastructure.DirectionForward, got.Direction)
		assert.InDelta(t, 1.2, got.DistanceNm, 1e-6)
		assert.InDelta(t, 0, got.StartingPoint.Lon, 1e-9)
		assert.InDelta(t, 2, got.EndingPoint.Lon, 1e-9)
		assert.Equal(t, 1, solver.calls)
		assert.Len(t, got.Path, 2)
	})

	t.Run("opposing heading flips the endpoints", func(t *testing.T) {
		m := matcher.New(testCatalog(), &straightSolver{})

		got, err := m.Match(context.Background(), datastructure.NewCoordinate(0.02, 1), 270, 25, 45)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, datastructure.DirectionReverse, got.Direction)
		assert.InDelta(t, 2, got.StartingPoint.Lon, 1e-9)
		assert.InDelta(t, 0, got.EndingPoint.Lon, 1e-9)
	})

	t.Run("crossing heading matches nothing", func(t *testing.T) {
		solver := &straightSolver{}
		m := matcher.New(testCatalog(), solver)

		got, err := m.Match(context.Background(), datastructure.NewCoordinate(0.02, 1), 0, 25, 45)
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.Zero(t, solver.calls)
	})

	t.Run("distance threshold excludes far lanes", func(t *testing.T) {
		m := matcher.New(testCatalog(), &straightSolver{})

		// every lane is at least 54 nm away from lat 1
		got, err := m.Match(context.Background(), datastructure.NewCoordinate(1, 1), 90, 5, 45)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("solver failure surfaces as an error", func(t *testing.T) {
		m := matcher.New(testCatalog(), &straightSolver{err: errors.New("no graph")})

		_, err := m.Match(context.Background(), datastructure.NewCoordinate(0.02, 1), 90, 25, 45)
		assert.Error(t, err)
	})

	t.Run("empty catalog is an error", func(t *testing.T) {
		m := matcher.New(catalog.NewRouteCatalog(), &straightSolver{})
		_, err := m.Match(context.Background(), datastructure.NewCoordinate(0, 0), 90, 25, 45)
		assert.Error(t, err)
	})
}

func TestNearestPerClass(t *testing.T) {
	m := matcher.New(testCatalog(), &straightSolver{})

	got := m.NearestPerClass(datastructure.NewCoordinate(0.02, 1))
	assert.Len(t, got, 3)
	assert.Equal(t, datastructure.RouteClassMajor, got[0].Class)
	assert.InDelta(t, 1.2, got[0].DistanceNm, 1e-6)
	assert.Equal(t, datastructure.RouteClassMiddle, got[1].Class)
	assert.InDelta(t, 4.8, got[1].DistanceNm, 1e-6)
	assert.Equal(t, datastructure.RouteClassMinor, got[2].Class)
}
