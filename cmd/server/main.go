package main

import (
	"flag"
	"log"
	"net/http"

	_ "net/http/pprof"

	"github.com/cockroachdb/pebble"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marlin/searoutex/pkg/catalog"
	"marlin/searoutex/pkg/chainer"
	"marlin/searoutex/pkg/kv"
	"marlin/searoutex/pkg/matcher"
	"marlin/searoutex/pkg/port"
	"marlin/searoutex/pkg/projector"
	"marlin/searoutex/pkg/seagraph"
	"marlin/searoutex/pkg/server/rest"
	"marlin/searoutex/pkg/server/rest/service"
)

var (
	listenAddr  = flag.String("listenaddr", ":5000", "server listen address")
	laneFile    = flag.String("f", "", "lane geojson file, overrides the snapshot and the download")
	laneURL     = flag.String("laneurl", "", "lane geojson url, used when no snapshot exists")
	dbDir       = flag.String("db", "searoutexDB", "pebble database directory")
	overpassURL = flag.String("overpass", "", "overpass api endpoint for port lookups")
)

func main() {
	flag.Parse()

	db, err := pebble.Open(*dbDir, &pebble.Options{})
	if err != nil {
		log.Fatal(err)
	}
	kvDB := kv.NewKVDB(db)
	defer kvDB.Close()

	rc := catalog.NewRouteCatalog()
	switch {
	case *laneFile != "":
		err = catalog.LoadFromFile(rc, *laneFile)
	default:
		if err = kvDB.LoadLanes(rc); err != nil {
			log.Printf("no usable lane snapshot (%v), downloading", err)
			err = catalog.LoadFromURL(rc, *laneURL)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
	rc.BuildIndices()

	solver := seagraph.NewSolver(rc)
	routeMatcher := matcher.New(rc, solver)
	oracle := port.NewOracle(kvDB, *overpassURL)
	voyageChainer := chainer.New(routeMatcher, oracle)
	navigatorSvc := service.NewNavigationService(routeMatcher, solver, voyageChainer, oracle, projector.BuildPlan)

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rest.NavigatorRouter(r, navigatorSvc, m)

	log.Printf("lane graph ready (%d vertices), server started at %s", solver.Graph().NumVertices(), *listenAddr)
	log.Fatal(http.ListenAndServe(*listenAddr, r))
}
