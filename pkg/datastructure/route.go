package datastructure

// RouteClass is the priority tier of a shipping lane. Matching walks the
// classes in declaration order, Major first.
type RouteClass int

const (
	RouteClassMajor RouteClass = iota
	RouteClassMiddle
	RouteClassMinor
)

var RouteClasses = [3]RouteClass{RouteClassMajor, RouteClassMiddle, RouteClassMinor}

func (rc RouteClass) String() string {
	switch rc {
	case RouteClassMajor:
		return "Major"
	case RouteClassMiddle:
		return "Middle"
	case RouteClassMinor:
		return "Minor"
	}
	return "Unknown"
}

// RouteClassFromString maps the GeoJSON "Type" property to a RouteClass.
func RouteClassFromString(s string) (RouteClass, bool) {
	switch s {
	case "Major":
		return RouteClassMajor, true
	case "Middle":
		return RouteClassMiddle, true
	case "Minor":
		return RouteClassMinor, true
	}
	return 0, false
}

// RouteSegment is one classified lane polyline. Coordinates are never
// reordered or mutated after ingestion.
type RouteSegment struct {
	Class RouteClass
	// ID is 1-based within the segment's class, assigned at catalog build time.
	ID     int
	Coords []Coordinate
}

func (rs RouteSegment) Start() Coordinate {
	return rs.Coords[0]
}

func (rs RouteSegment) End() Coordinate {
	return rs.Coords[len(rs.Coords)-1]
}

// Direction tells whether the vessel traverses a polyline in its natural
// coordinate order or against it.
type Direction int

const (
	DirectionForward Direction = iota
	DirectionReverse
)

// RouteMatch is the transient result of one nearest-route attempt.
type RouteMatch struct {
	RouteID      int
	Class        RouteClass
	DistanceNm   float64
	ProjDistance float64 // along-track projection distance, in degrees
	NearestPoint Coordinate
	RouteHeading float64
	HeadingDiff  float64
	Direction    Direction
	// StartingPoint/EndingPoint are the segment endpoints oriented by the
	// inferred direction of travel.
	StartingPoint Coordinate
	EndingPoint   Coordinate
	// Path is the navigable track resolved by the route graph solver between
	// the query point and EndingPoint. Waypoint projection walks this, not
	// the raw catalog polyline.
	Path []Coordinate
}

// WaypointPlan is the projected set of future positions for one matched
// route hop. Immutable once produced.
type WaypointPlan struct {
	CurrentPosition Coordinate   `json:"current_position"`
	CurrentHeading  float64      `json:"current_heading"`
	CurrentSpeed    float64      `json:"current_speed"`
	Waypoints       []Coordinate `json:"waypoints"`
	ObservedHours   float64      `json:"observed_hrs"`
	NumObservations int          `json:"num_observations"`
	RouteStart      Coordinate   `json:"route_start"`
	RouteEnd        Coordinate   `json:"route_end"`
	EndAtPort       bool         `json:"end_at_port"`
}
