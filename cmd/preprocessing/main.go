package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/cockroachdb/pebble"

	"marlin/searoutex/pkg/catalog"
	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/kv"
)

var (
	laneFile = flag.String("f", "", "lane geojson file; downloaded when empty")
	laneURL  = flag.String("laneurl", catalog.DefaultLaneDataURL, "lane geojson url")
	dbDir    = flag.String("db", "searoutexDB", "pebble database directory")
)

func main() {
	flag.Parse()

	rc := catalog.NewRouteCatalog()
	var err error
	if *laneFile != "" {
		fmt.Printf("[1/2] loading shipping lanes from %s...\n", *laneFile)
		err = catalog.LoadFromFile(rc, *laneFile)
	} else {
		fmt.Printf("[1/2] downloading shipping lanes from %s...\n", *laneURL)
		err = catalog.LoadFromURL(rc, *laneURL)
	}
	if err != nil {
		log.Fatal(err)
	}

	db, err := pebble.Open(*dbDir, &pebble.Options{})
	if err != nil {
		log.Fatal(err)
	}
	kvDB := kv.NewKVDB(db)
	defer kvDB.Close()

	if err := kvDB.SaveLanes(rc); err != nil {
		log.Fatal(err)
	}

	fmt.Println("")
	for _, class := range datastructure.RouteClasses {
		fmt.Printf("%s lanes: %d\n", class, rc.Len(class))
	}
	fmt.Printf("lane snapshot written to %s\n", *dbDir)
}
