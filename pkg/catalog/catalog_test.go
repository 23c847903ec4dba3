package catalog_test

import (
	"testing"

	"marlin/searoutex/pkg/catalog"
	"marlin/searoutex/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

func line(coords ...[2]float64) []datastructure.Coordinate {
	out := make([]datastructure.Coordinate, 0, len(coords))
	for _, c := range coords {
		out = append(out, datastructure.NewCoordinate(c[0], c[1]))
	}
	return out
}

func TestIngest(t *testing.T) {
	t.Run("keeps polylines with at least two points", func(t *testing.T) {
		rc := catalog.NewRouteCatalog()
		kept := rc.Ingest(datastructure.RouteClassMajor, [][]datastructure.Coordinate{
			line([2]float64{0, 0}, [2]float64{0, 1}),
			line([2]float64{5, 5}), // degenerate, rejected
			nil,
		})
		assert.Equal(t, 1, kept)
		assert.Equal(t, 1, rc.Len(datastructure.RouteClassMajor))
	})
}

func TestQueryBeforeBuild(t *testing.T) {
	rc := catalog.NewRouteCatalog()
	rc.Ingest(datastructure.RouteClassMajor, [][]datastructure.Coordinate{
		line([2]float64{0, 0}, [2]float64{0, 1}),
	})

	// no BuildIndices yet: empty result, not an error
	got := rc.Nearest(datastructure.RouteClassMajor, datastructure.NewCoordinate(0, 0), 5)
	assert.Empty(t, got)
	assert.False(t, rc.Ready())
}

func TestNearest(t *testing.T) {
	rc := catalog.NewRouteCatalog()
	rc.Ingest(datastructure.RouteClassMajor, [][]datastructure.Coordinate{
		line([2]float64{0, 0}, [2]float64{0, 1}),
		line([2]float64{10, 10}, [2]float64{10, 11}),
	})
	rc.BuildIndices()

	t.Run("orders candidates by bounding box distance", func(t *testing.T) {
		got := rc.Nearest(datastructure.RouteClassMajor, datastructure.NewCoordinate(0.1, 0.5), 2)
		assert.Len(t, got, 2)
		assert.Equal(t, 1, got[0].ID)
	})

	t.Run("empty class yields no candidates", func(t *testing.T) {
		got := rc.Nearest(datastructure.RouteClassMinor, datastructure.NewCoordinate(0, 0), 5)
		assert.Empty(t, got)
	})
}

func TestSegmentByID(t *testing.T) {
	rc := catalog.NewRouteCatalog()
	rc.Ingest(datastructure.RouteClassMajor, [][]datastructure.Coordinate{
		line([2]float64{0, 0}, [2]float64{0, 1}),
		line([2]float64{1, 0}, [2]float64{1, 1}),
	})
	rc.Ingest(datastructure.RouteClassMiddle, [][]datastructure.Coordinate{
		line([2]float64{2, 0}, [2]float64{2, 1}),
	})
	rc.Ingest(datastructure.RouteClassMinor, [][]datastructure.Coordinate{
		line([2]float64{3, 0}, [2]float64{3, 1}),
	})
	rc.BuildIndices()

	t.Run("per class lookup is 1-based", func(t *testing.T) {
		class := datastructure.RouteClassMiddle
		seg, err := rc.SegmentByID(&class, 1)
		assert.NoError(t, err)
		assert.Equal(t, datastructure.RouteClassMiddle, seg.Class)
		assert.InDelta(t, 2.0, seg.Start().Lat, 1e-9)
	})

	t.Run("global lookup walks classes in priority order", func(t *testing.T) {
		seg, err := rc.SegmentByID(nil, 3)
		assert.NoError(t, err)
		assert.Equal(t, datastructure.RouteClassMiddle, seg.Class)

		seg, err = rc.SegmentByID(nil, 4)
		assert.NoError(t, err)
		assert.Equal(t, datastructure.RouteClassMinor, seg.Class)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := rc.SegmentByID(nil, 99)
		assert.Error(t, err)
	})
}

func TestEndpoints(t *testing.T) {
	rc := catalog.NewRouteCatalog()
	rc.Ingest(datastructure.RouteClassMajor, [][]datastructure.Coordinate{
		line([2]float64{0, 0}, [2]float64{0.5, 0.5}, [2]float64{1, 1}),
	})
	rc.BuildIndices()

	start, end, err := rc.Endpoints(nil, 1)
	assert.NoError(t, err)
	assert.Equal(t, datastructure.NewCoordinate(0, 0), start)
	assert.Equal(t, datastructure.NewCoordinate(1, 1), end)
}

func TestIngestGeoJSON(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"Type": "Major"},
				"geometry": {"type": "MultiLineString", "coordinates": [[[0,0],[1,0]],[[2,0],[3,0]]]}
			},
			{
				"type": "Feature",
				"properties": {"Type": "Minor"},
				"geometry": {"type": "LineString", "coordinates": [[5,5],[6,6]]}
			},
			{
				"type": "Feature",
				"properties": {"Type": "Footpath"},
				"geometry": {"type": "LineString", "coordinates": [[7,7],[8,8]]}
			}
		]
	}`)

	rc := catalog.NewRouteCatalog()
	err := catalog.IngestGeoJSON(rc, data)
	assert.NoError(t, err)
	assert.Equal(t, 2, rc.Len(datastructure.RouteClassMajor))
	assert.Equal(t, 0, rc.Len(datastructure.RouteClassMiddle))
	assert.Equal(t, 1, rc.Len(datastructure.RouteClassMinor))

	rc.BuildIndices()
	assert.True(t, rc.Ready())

	// geojson coordinates are lon,lat ordered
	seg, err := rc.SegmentByID(nil, 3)
	assert.NoError(t, err)
	assert.InDelta(t, 5.0, seg.Start().Lat, 1e-9)
	assert.InDelta(t, 5.0, seg.Start().Lon, 1e-9)

	t.Run("malformed body is fatal", func(t *testing.T) {
		err := catalog.IngestGeoJSON(catalog.NewRouteCatalog(), []byte(`{"type":`))
		assert.Error(t, err)
	})
}
