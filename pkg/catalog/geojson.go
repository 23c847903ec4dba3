package catalog

import (
	"io"
	"net/http"
	"os"
	"time"

	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/datastructure"

	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultLaneDataURL is the classified global shipping lane dataset the
// engine was built around.
const DefaultLaneDataURL = "https://github.com/newzealandpaul/Shipping-Lanes/blob/main/data/Shipping_Lanes_v1.geojson?raw=true"

const fetchTimeout = 30 * time.Second

// LoadFromURL downloads a GeoJSON feature collection of classified lanes
// and ingests it. The catalog cannot be used if this fails.
func LoadFromURL(rc *RouteCatalog, url string) error {
	if url == "" {
		url = DefaultLaneDataURL
	}

	client := httpclient.NewClient(httpclient.WithHTTPTimeout(fetchTimeout))
	res, err := client.Get(url, http.Header{})
	if err != nil {
		return domain.WrapErrorf(err, domain.ErrDataUnavailable, "fetching lane data from %s", url)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return domain.WrapErrorf(nil, domain.ErrDataUnavailable, "fetching lane data from %s: status %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.WrapErrorf(err, domain.ErrDataUnavailable, "reading lane data from %s", url)
	}

	return IngestGeoJSON(rc, body)
}

// LoadFromFile ingests a GeoJSON feature collection from disk.
func LoadFromFile(rc *RouteCatalog, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return domain.WrapErrorf(err, domain.ErrDataUnavailable, "reading lane data file %s", path)
	}
	return IngestGeoJSON(rc, body)
}

// IngestGeoJSON parses a feature collection whose features carry a "Type"
// property of Major/Middle/Minor and appends their polylines to the
// catalog. Features with unknown classes or non-line geometries are
// skipped. The caller still has to run BuildIndices.
func IngestGeoJSON(rc *RouteCatalog, data []byte) error {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return domain.WrapErrorf(err, domain.ErrDataUnavailable, "parsing lane geojson")
	}

	for _, feature := range fc.Features {
		class, ok := datastructure.RouteClassFromString(feature.Properties.MustString("Type", ""))
		if !ok {
			continue
		}

		var lines []orb.LineString
		switch geom := feature.Geometry.(type) {
		case orb.LineString:
			lines = append(lines, geom)
		case orb.MultiLineString:
			lines = append(lines, geom...)
		default:
			continue
		}

		polylines := make([][]datastructure.Coordinate, 0, len(lines))
		for _, line := range lines {
			coords := make([]datastructure.Coordinate, 0, len(line))
			for _, p := range line {
				coords = append(coords, datastructure.NewCoordinate(p.Lat(), p.Lon()))
			}
			polylines = append(polylines, coords)
		}
		rc.Ingest(class, polylines)
	}

	return nil
}
