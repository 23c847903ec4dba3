package chainer_test

import (
	"context"
	"errors"
	"testing"

	"marlin/searoutex/pkg/chainer"
	"marlin/searoutex/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

func coord(lat, lon float64) datastructure.Coordinate {
	return datastructure.NewCoordinate(lat, lon)
}

func eastMatch(startLon, endLon float64) *datastructure.RouteMatch {
	return &datastructure.RouteMatch{
		RouteID:       1,
		Class:         datastructure.RouteClassMajor,
		Direction:     datastructure.DirectionForward,
		StartingPoint: coord(0, startLon),
		EndingPoint:   coord(0, endLon),
		Path: []datastructure.Coordinate{
			coord(0, startLon), coord(0, (startLon+endLon)/2), coord(0, endLon),
		},
	}
}

// laneStub answers Match by longitude band, ignoring thresholds unless
// minDistance is set.
type laneStub struct {
	lanes       []*datastructure.RouteMatch
	minDistance float64
	err         error
	calls       int
}

func (s *laneStub) Match(_ context.Context, point datastructure.Coordinate, _ float64,
	distanceThresholdNm, _ float64) (*datastructure.RouteMatch, error) {

	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if distanceThresholdNm < s.minDistance {
		return nil, nil
	}
	for i, lane := range s.lanes {
		if point.Lon >= lane.StartingPoint.Lon-0.5 && point.Lon <= lane.EndingPoint.Lon+0.5 {
			// a matched lane is consumed so the chain moves on
			s.lanes = append(s.lanes[:i], s.lanes[i+1:]...)
			return lane, nil
		}
	}
	return nil, nil
}

// recorderStub never matches and logs every search it is asked to run.
type recorderStub struct {
	points    []datastructure.Coordinate
	distances []float64
	headings  []float64
}

func (s *recorderStub) Match(_ context.Context, point datastructure.Coordinate, _ float64,
	distanceThresholdNm, headingThresholdDeg float64) (*datastructure.RouteMatch, error) {

	s.points = append(s.points, point)
	s.distances = append(s.distances, distanceThresholdNm)
	s.headings = append(s.headings, headingThresholdDeg)
	return nil, nil
}

type portStub struct {
	near map[datastructure.Coordinate]bool
	err  error
}

func (s *portStub) NearPort(_ context.Context, point datastructure.Coordinate, _ float64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.near[point], nil
}

func TestChainVoyage(t *testing.T) {
	t.Run("single lane yields one plan", func(t *testing.T) {
		stub := &laneStub{lanes: []*datastructure.RouteMatch{eastMatch(0, 2)}}
		c := chainer.New(stub, &portStub{})

		plans, err := c.ChainVoyage(context.Background(), coord(0.02, 0.1), 90, 30, 2, 10)
		assert.NoError(t, err)
		assert.Len(t, plans, 1)
		assert.Equal(t, coord(0, 0), plans[0].RouteStart)
		assert.Equal(t, coord(0, 2), plans[0].RouteEnd)
		assert.False(t, plans[0].EndAtPort)
	})

	t.Run("two lanes chain into two plans", func(t *testing.T) {
		stub := &laneStub{lanes: []*datastructure.RouteMatch{
			eastMatch(0, 2),
			eastMatch(2.1, 4),
		}}
		c := chainer.New(stub, &portStub{})

		plans, err := c.ChainVoyage(context.Background(), coord(0.02, 0.1), 90, 30, 2, 10)
		assert.NoError(t, err)
		assert.Len(t, plans, 2)
		assert.InDelta(t, 2.1, plans[1].RouteStart.Lon, 1e-9)
	})

	t.Run("port at the lane end terminates the chain", func(t *testing.T) {
		stub := &laneStub{lanes: []*datastructure.RouteMatch{
			eastMatch(0, 2),
			eastMatch(2.1, 4),
		}}
		ports := &portStub{near: map[datastructure.Coordinate]bool{coord(0, 2): true}}
		c := chainer.New(stub, ports)

		plans, err := c.ChainVoyage(context.Background(), coord(0.02, 0.1), 90, 30, 2, 10)
		assert.NoError(t, err)
		assert.Len(t, plans, 1)
		assert.True(t, plans[0].EndAtPort)
	})

	t.Run("port on the second lane ends a two-plan chain", func(t *testing.T) {
		stub := &laneStub{lanes: []*datastructure.RouteMatch{
			eastMatch(0, 2),
			eastMatch(2.1, 4),
		}}
		ports := &portStub{near: map[datastructure.Coordinate]bool{coord(0, 4): true}}
		c := chainer.New(stub, ports)

		plans, err := c.ChainVoyage(context.Background(), coord(0.02, 0.1), 90, 30, 2, 10)
		assert.NoError(t, err)
		assert.Len(t, plans, 2)
		assert.False(t, plans[0].EndAtPort)
		assert.True(t, plans[1].EndAtPort)
	})

	t.Run("port oracle failure is treated as no port", func(t *testing.T) {
		stub := &laneStub{lanes: []*datastructure.RouteMatch{eastMatch(0, 2)}}
		c := chainer.New(stub, &portStub{err: errors.New("overpass down")})

		plans, err := c.ChainVoyage(context.Background(), coord(0.02, 0.1), 90, 30, 2, 10)
		assert.NoError(t, err)
		assert.Len(t, plans, 1)
		assert.False(t, plans[0].EndAtPort)
	})

	t.Run("search escalates thresholds until the lane qualifies", func(t *testing.T) {
		stub := &laneStub{
			lanes:       []*datastructure.RouteMatch{eastMatch(0, 2)},
			minDistance: 30,
		}
		c := chainer.New(stub, &portStub{})

		plans, err := c.ChainVoyage(context.Background(), coord(0.02, 0.1), 90, 30, 2, 10)
		assert.NoError(t, err)
		assert.Len(t, plans, 1)
		// 5 nm start rejected at least once before the window widened
		assert.Greater(t, stub.calls, 1)
		// the plan reports the queried position, not where the search crept to
		assert.Equal(t, coord(0.02, 0.1), plans[0].CurrentPosition)
	})

	t.Run("every miss advances the point and only widens the window", func(t *testing.T) {
		rec := &recorderStub{}
		c := chainer.New(rec, &portStub{})

		plans, err := c.ChainVoyage(context.Background(), coord(0, 0), 90, 30, 2, 10)
		assert.NoError(t, err)
		assert.Empty(t, plans)

		assert.Greater(t, len(rec.points), 1)
		assert.InDelta(t, 5, rec.distances[0], 1e-9)
		assert.InDelta(t, 5, rec.headings[0], 1e-9)
		for i := 1; i < len(rec.points); i++ {
			assert.Greater(t, rec.points[i].Lon, rec.points[i-1].Lon)
			assert.GreaterOrEqual(t, rec.distances[i], rec.distances[i-1])
			assert.GreaterOrEqual(t, rec.headings[i], rec.headings[i-1])
		}
		last := len(rec.points) - 1
		assert.InDelta(t, 100, rec.distances[last], 1e-9)
		assert.InDelta(t, 45, rec.headings[last], 1e-9)
	})

	t.Run("open water with nothing matchable yields no plans", func(t *testing.T) {
		c := chainer.New(&laneStub{}, &portStub{})

		plans, err := c.ChainVoyage(context.Background(), coord(40, -40), 90, 30, 2, 10)
		assert.NoError(t, err)
		assert.Empty(t, plans)
	})

	t.Run("matcher failure surfaces", func(t *testing.T) {
		c := chainer.New(&laneStub{err: errors.New("catalog empty")}, &portStub{})
		_, err := c.ChainVoyage(context.Background(), coord(0, 0), 90, 30, 2, 10)
		assert.Error(t, err)
	})
}

func TestThresholdEscalation(t *testing.T) {
	th := chainer.DefaultThresholds()
	assert.InDelta(t, 5, th.DistanceNm, 1e-9)
	assert.InDelta(t, 5, th.HeadingDeg, 1e-9)

	steps := 0
	for th.Escalate() {
		steps++
		assert.LessOrEqual(t, th.DistanceNm, 100.0)
		assert.LessOrEqual(t, th.HeadingDeg, 45.0)
	}
	assert.InDelta(t, 100, th.DistanceNm, 1e-9)
	assert.InDelta(t, 45, th.HeadingDeg, 1e-9)
	assert.Equal(t, 8, steps)
}
