package port

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gojek/heimdall/v7/httpclient"

	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/datastructure"
)

const (
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

	queryTimeout = 20 * time.Second
	metersPerNm  = 1852.0
)

// Cache stores near-port answers so repeated voyage terminations in the
// same area skip the Overpass round trip.
type Cache interface {
	GetPortFlag(point datastructure.Coordinate, radiusNm float64) (near bool, ok bool)
	SetPortFlag(point datastructure.Coordinate, radiusNm float64, near bool)
}

// Oracle answers "is there a port near this coordinate" from OpenStreetMap
// data via the Overpass API.
type Oracle struct {
	client *httpclient.Client
	cache  Cache
	apiURL string
}

func NewOracle(cache Cache, apiURL string) *Oracle {
	if apiURL == "" {
		apiURL = DefaultOverpassURL
	}
	return &Oracle{
		client: httpclient.NewClient(httpclient.WithHTTPTimeout(queryTimeout)),
		cache:  cache,
		apiURL: apiURL,
	}
}

type overpassResponse struct {
	Elements []json.RawMessage `json:"elements"`
}

// NearPort reports whether any harbour or port feature lies within
// radiusNm of the point. Callers are expected to treat an error as "no
// port known".
func (o *Oracle) NearPort(ctx context.Context, point datastructure.Coordinate, radiusNm float64) (bool, error) {
	if o.cache != nil {
		if near, ok := o.cache.GetPortFlag(point, radiusNm); ok {
			return near, nil
		}
	}

	radiusM := radiusNm * metersPerNm
	query := fmt.Sprintf(`[out:json][timeout:10];(`+
		`node["harbour"="yes"](around:%.0f,%.6f,%.6f);`+
		`node["seamark:type"="harbour"](around:%.0f,%.6f,%.6f);`+
		`way["landuse"="port"](around:%.0f,%.6f,%.6f);`+
		`);out ids 1;`,
		radiusM, point.Lat, point.Lon,
		radiusM, point.Lat, point.Lon,
		radiusM, point.Lat, point.Lon)

	body := strings.NewReader("data=" + url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, body)
	if err != nil {
		return false, domain.WrapErrorf(err, domain.ErrCollaborator, "building overpass request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := o.client.Do(req)
	if err != nil {
		return false, domain.WrapErrorf(err, domain.ErrCollaborator, "querying overpass")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return false, domain.WrapErrorf(nil, domain.ErrCollaborator, "overpass status %d", res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return false, domain.WrapErrorf(err, domain.ErrCollaborator, "reading overpass response")
	}

	var parsed overpassResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return false, domain.WrapErrorf(err, domain.ErrCollaborator, "parsing overpass response")
	}

	near := len(parsed.Elements) > 0
	if o.cache != nil {
		o.cache.SetPortFlag(point, radiusNm, near)
	}
	return near, nil
}
