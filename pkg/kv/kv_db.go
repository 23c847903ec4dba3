package kv

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/uber/h3-go/v4"

	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/catalog"
	"marlin/searoutex/pkg/concurrent"
	"marlin/searoutex/pkg/datastructure"
)

const (
	laneKeyPrefix = "lanes/"
	portKeyPrefix = "port/"

	// h3 resolution 5 cells are ~250 km2, coarse enough that nearby voyage
	// terminations share one cached port answer
	portCellResolution = 5
)

type KVDB struct {
	db *pebble.DB
}

func NewKVDB(db *pebble.DB) *KVDB {
	return &KVDB{db}
}

func laneKey(class datastructure.RouteClass) string {
	return laneKeyPrefix + class.String()
}

// SaveLanes snapshots every lane class's polylines so later boots skip the
// GeoJSON download. Class snapshots are written concurrently.
func (k *KVDB) SaveLanes(rc *catalog.RouteCatalog) error {
	bar := progressbar.NewOptions(len(datastructure.RouteClasses),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][2/2][reset] saving lane snapshot to pebble db..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	workers := concurrent.NewWorkerPool[concurrent.SaveLaneJobItem, error](len(datastructure.RouteClasses), len(datastructure.RouteClasses))

	for _, class := range datastructure.RouteClasses {
		segments := rc.Segments(class)
		polylines := make([][]datastructure.Coordinate, len(segments))
		for i := range segments {
			polylines[i] = segments[i].Coords
		}
		workers.AddJob(concurrent.SaveLaneJobItem{KeyStr: laneKey(class), Polylines: polylines})
		bar.Add(1)
	}
	workers.Close()

	workers.Start(k.saveLaneSnapshot)
	workers.Wait()

	for err := range workers.CollectResults() {
		if err != nil {
			return err
		}
	}
	return nil
}

func (k *KVDB) saveLaneSnapshot(item concurrent.SaveLaneJobItem) error {
	compressed, err := Compress(Encode(item.Polylines))
	if err != nil {
		return domain.WrapErrorf(err, domain.ErrInternalServerError, "compressing lane snapshot %s", item.KeyStr)
	}
	if err := k.db.Set([]byte(item.KeyStr), compressed, pebble.Sync); err != nil {
		return domain.WrapErrorf(err, domain.ErrInternalServerError, "writing lane snapshot %s", item.KeyStr)
	}
	return nil
}

// LoadLanes restores the catalog from a snapshot. Missing classes are
// fine; a snapshot with no lanes at all is not.
func (k *KVDB) LoadLanes(rc *catalog.RouteCatalog) error {
	loaded := 0
	for _, class := range datastructure.RouteClasses {
		val, closer, err := k.db.Get([]byte(laneKey(class)))
		if err != nil {
			if errors.Is(err, pebble.ErrNotFound) {
				continue
			}
			return domain.WrapErrorf(err, domain.ErrInternalServerError, "reading lane snapshot %s", laneKey(class))
		}

		decompressed, err := Decompress(val)
		closer.Close()
		if err != nil {
			return domain.WrapErrorf(err, domain.ErrInternalServerError, "decompressing lane snapshot %s", laneKey(class))
		}

		polylines, err := Decode(decompressed)
		if err != nil {
			return domain.WrapErrorf(err, domain.ErrInternalServerError, "decoding lane snapshot %s", laneKey(class))
		}
		loaded += rc.Ingest(class, polylines)
	}

	if loaded == 0 {
		return domain.WrapErrorf(nil, domain.ErrDataUnavailable, "lane snapshot is empty")
	}
	return nil
}

func portKey(point datastructure.Coordinate, radiusNm float64) string {
	cell := h3.LatLngToCell(h3.NewLatLng(point.Lat, point.Lon), portCellResolution)
	return fmt.Sprintf("%s%s/%d", portKeyPrefix, cell.String(), int(radiusNm))
}

// GetPortFlag looks up a cached near-port answer for the point's h3 cell.
// ok reports a cache hit.
func (k *KVDB) GetPortFlag(point datastructure.Coordinate, radiusNm float64) (near bool, ok bool) {
	val, closer, err := k.db.Get([]byte(portKey(point, radiusNm)))
	if err != nil {
		return false, false
	}
	defer closer.Close()
	return len(val) == 1 && val[0] == 1, true
}

// SetPortFlag caches a near-port answer. Best effort, a failed write just
// means the next lookup asks upstream again.
func (k *KVDB) SetPortFlag(point datastructure.Coordinate, radiusNm float64, near bool) {
	v := byte(0)
	if near {
		v = 1
	}
	k.db.Set([]byte(portKey(point, radiusNm)), []byte{v}, pebble.NoSync)
}

func (k *KVDB) Close() {
	k.db.Close()
}
