package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"marlin/searoutex/domain"
	"marlin/searoutex/pkg/datastructure"
	"marlin/searoutex/pkg/matcher"
	"marlin/searoutex/pkg/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

const (
	defaultDistanceThresholdNm = 25.0
	defaultHeadingThresholdDeg = 45.0
)

type NavigationService interface {
	NextWaypoints(ctx context.Context, position datastructure.Coordinate,
		heading, speedKnots, durationHours float64, count int,
		distanceThresholdNm, headingThresholdDeg float64) (datastructure.WaypointPlan, *datastructure.RouteMatch, error)

	WaypointsToDestination(ctx context.Context, position datastructure.Coordinate,
		heading, speedKnots, durationHours float64, count int,
		destination datastructure.Coordinate, via *datastructure.Coordinate) (datastructure.WaypointPlan, error)

	ChainVoyage(ctx context.Context, position datastructure.Coordinate,
		heading, speedKnots, durationHours float64, count int) ([]datastructure.WaypointPlan, error)

	NearestRoutes(ctx context.Context, position datastructure.Coordinate) ([]matcher.ClassCandidate, error)
}

type NavigationHandler struct {
	svc          NavigationService
	promeMetrics *metrics
}

func NavigatorRouter(r *chi.Mux, svc NavigationService, m *metrics) {
	handler := &NavigationHandler{svc, m}

	r.Group(func(r chi.Router) {
		r.Route("/api/routes", func(r chi.Router) {
			r.Post("/nearest", handler.nearestRoutes)
			r.Post("/waypoints", handler.nextWaypoints)
			r.Post("/waypoints-to-destination", handler.waypointsToDestination)
			r.Post("/chain", handler.chainVoyage)
			r.Get("/hello", handler.Hello)
		})
	})
}

// NearestRouteRequest model info
//
//	@Description	request body for the per-class nearest lane query
type NearestRouteRequest struct {
	Lat float64 `json:"lat" validate:"required,lt=90,gt=-90"`
	Lon float64 `json:"lon" validate:"required,lt=180,gt=-180"`
}

func (s *NearestRouteRequest) Bind(r *http.Request) error {
	if s.Lat == 0 || s.Lon == 0 {
		return errors.New("invalid request")
	}
	return nil
}

// NextWaypointsRequest model info
//
//	@Description	request body for waypoint projection with an unknown destination
type NextWaypointsRequest struct {
	Lat                 float64 `json:"lat" validate:"required,lt=90,gt=-90"`
	Lon                 float64 `json:"lon" validate:"required,lt=180,gt=-180"`
	Heading             float64 `json:"heading" validate:"gte=0,lt=360"`
	SpeedKnots          float64 `json:"speed_knots" validate:"required,gt=0"`
	ObservedHours       float64 `json:"observed_hrs" validate:"required,gt=0"`
	NumObservations     int     `json:"num_observations" validate:"required,gt=0,lte=500"`
	DistanceThresholdNm float64 `json:"distance_threshold_nm" validate:"gte=0,lte=100"`
	HeadingThresholdDeg float64 `json:"heading_threshold_deg" validate:"gte=0,lte=180"`
}

func (s *NextWaypointsRequest) Bind(r *http.Request) error {
	if s.Lat == 0 || s.Lon == 0 || s.SpeedKnots == 0 {
		return errors.New("invalid request")
	}
	if s.DistanceThresholdNm == 0 {
		s.DistanceThresholdNm = defaultDistanceThresholdNm
	}
	if s.HeadingThresholdDeg == 0 {
		s.HeadingThresholdDeg = defaultHeadingThresholdDeg
	}
	return nil
}

// WaypointsToDestinationRequest model info
//
//	@Description	request body for waypoint projection toward a known destination
type WaypointsToDestinationRequest struct {
	Lat             float64  `json:"lat" validate:"required,lt=90,gt=-90"`
	Lon             float64  `json:"lon" validate:"required,lt=180,gt=-180"`
	Heading         float64  `json:"heading" validate:"gte=0,lt=360"`
	SpeedKnots      float64  `json:"speed_knots" validate:"required,gt=0"`
	ObservedHours   float64  `json:"observed_hrs" validate:"required,gt=0"`
	NumObservations int      `json:"num_observations" validate:"required,gt=0,lte=500"`
	DstLat          float64  `json:"dst_lat" validate:"required,lt=90,gt=-90"`
	DstLon          float64  `json:"dst_lon" validate:"required,lt=180,gt=-180"`
	ViaLat          *float64 `json:"via_lat,omitempty" validate:"omitempty,lt=90,gt=-90"`
	ViaLon          *float64 `json:"via_lon,omitempty" validate:"omitempty,lt=180,gt=-180"`
}

func (s *WaypointsToDestinationRequest) Bind(r *http.Request) error {
	if s.Lat == 0 || s.Lon == 0 || s.DstLat == 0 || s.DstLon == 0 || s.SpeedKnots == 0 {
		return errors.New("invalid request")
	}
	if (s.ViaLat == nil) != (s.ViaLon == nil) {
		return errors.New("via_lat and via_lon must be set together")
	}
	return nil
}

// ChainVoyageRequest model info
//
//	@Description	request body for whole-voyage waypoint chaining
type ChainVoyageRequest struct {
	Lat             float64 `json:"lat" validate:"required,lt=90,gt=-90"`
	Lon             float64 `json:"lon" validate:"required,lt=180,gt=-180"`
	Heading         float64 `json:"heading" validate:"gte=0,lt=360"`
	SpeedKnots      float64 `json:"speed_knots" validate:"required,gt=0"`
	ObservedHours   float64 `json:"observed_hrs" validate:"required,gt=0"`
	NumObservations int     `json:"num_observations" validate:"required,gt=0,lte=500"`
}

func (s *ChainVoyageRequest) Bind(r *http.Request) error {
	if s.Lat == 0 || s.Lon == 0 || s.SpeedKnots == 0 {
		return errors.New("invalid request")
	}
	return nil
}

// RouteCandidateRes model info
//
//	@Description	one class's nearest lane
type RouteCandidateRes struct {
	Class      string                   `json:"class"`
	RouteID    int                      `json:"route_id"`
	DistanceNm float64                  `json:"distance_nm"`
	Nearest    datastructure.Coordinate `json:"nearest_point"`
}

// NearestRoutesResponse model info
//
//	@Description	response body for the per-class nearest lane query
type NearestRoutesResponse struct {
	Routes []RouteCandidateRes `json:"routes"`
}

func NewNearestRoutesResponse(candidates []matcher.ClassCandidate) *NearestRoutesResponse {
	routes := make([]RouteCandidateRes, 0, len(candidates))
	for _, c := range candidates {
		routes = append(routes, RouteCandidateRes{
			Class:      c.Class.String(),
			RouteID:    c.RouteID,
			DistanceNm: util.RoundFloat(c.DistanceNm, 3),
			Nearest:    c.NearestPoint,
		})
	}
	return &NearestRoutesResponse{Routes: routes}
}

// WaypointPlanResponse model info
//
//	@Description	one projected waypoint plan plus its encoded track
type WaypointPlanResponse struct {
	datastructure.WaypointPlan
	Path string `json:"path"`
}

func NewWaypointPlanResponse(plan datastructure.WaypointPlan) WaypointPlanResponse {
	return WaypointPlanResponse{
		WaypointPlan: plan,
		Path:         datastructure.RenderPath(plan.Waypoints),
	}
}

// NextWaypointsResponse model info
//
//	@Description	response body for waypoint projection with an unknown destination
type NextWaypointsResponse struct {
	WaypointPlanResponse
	Class       string  `json:"matched_class"`
	RouteID     int     `json:"matched_route_id"`
	DistanceNm  float64 `json:"match_distance_nm"`
	HeadingDiff float64 `json:"match_heading_diff"`
	Direction   string  `json:"direction"`
}

func NewNextWaypointsResponse(plan datastructure.WaypointPlan, match *datastructure.RouteMatch) *NextWaypointsResponse {
	direction := "forward"
	if match.Direction == datastructure.DirectionReverse {
		direction = "reverse"
	}
	return &NextWaypointsResponse{
		WaypointPlanResponse: NewWaypointPlanResponse(plan),
		Class:                match.Class.String(),
		RouteID:              match.RouteID,
		DistanceNm:           util.RoundFloat(match.DistanceNm, 3),
		HeadingDiff:          util.RoundFloat(match.HeadingDiff, 3),
		Direction:            direction,
	}
}

// ChainVoyageResponse model info
//
//	@Description	response body for whole-voyage waypoint chaining
type ChainVoyageResponse struct {
	Plans []WaypointPlanResponse `json:"plans"`
}

func NewChainVoyageResponse(plans []datastructure.WaypointPlan) *ChainVoyageResponse {
	out := make([]WaypointPlanResponse, 0, len(plans))
	for _, plan := range plans {
		out = append(out, NewWaypointPlanResponse(plan))
	}
	return &ChainVoyageResponse{Plans: out}
}

// nearestRoutes
//
//	@Summary		nearest shipping lane of every class around a coordinate
//	@Tags			routes
//	@Param			body	body	NearestRouteRequest	true	"coordinate to query around"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/routes/nearest [post]
//	@Success		200	{object}	NearestRoutesResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) nearestRoutes(w http.ResponseWriter, r *http.Request) {
	data := &NearestRouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := validateRequest(w, r, data); err != nil {
		return
	}

	h.promeMetrics.MatchQueryCount.WithLabelValues("nearest").Inc()
	candidates, err := h.svc.NearestRoutes(r.Context(), datastructure.NewCoordinate(data.Lat, data.Lon))
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewNearestRoutesResponse(candidates))
}

// nextWaypoints
//
//	@Summary		project future waypoints along the matched lane, destination unknown
//	@Tags			routes
//	@Param			body	body	NextWaypointsRequest	true	"vessel observation"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/routes/waypoints [post]
//	@Success		200	{object}	NextWaypointsResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) nextWaypoints(w http.ResponseWriter, r *http.Request) {
	data := &NextWaypointsRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := validateRequest(w, r, data); err != nil {
		return
	}

	h.promeMetrics.MatchQueryCount.WithLabelValues("waypoints").Inc()
	plan, match, err := h.svc.NextWaypoints(r.Context(),
		datastructure.NewCoordinate(data.Lat, data.Lon), data.Heading,
		data.SpeedKnots, data.ObservedHours, data.NumObservations,
		data.DistanceThresholdNm, data.HeadingThresholdDeg)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewNextWaypointsResponse(plan, match))
}

// waypointsToDestination
//
//	@Summary		project future waypoints along the solved track to a known destination
//	@Tags			routes
//	@Param			body	body	WaypointsToDestinationRequest	true	"vessel observation plus destination"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/routes/waypoints-to-destination [post]
//	@Success		200	{object}	WaypointPlanResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) waypointsToDestination(w http.ResponseWriter, r *http.Request) {
	data := &WaypointsToDestinationRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := validateRequest(w, r, data); err != nil {
		return
	}

	var via *datastructure.Coordinate
	if data.ViaLat != nil && data.ViaLon != nil {
		v := datastructure.NewCoordinate(*data.ViaLat, *data.ViaLon)
		via = &v
	}

	h.promeMetrics.MatchQueryCount.WithLabelValues("waypoints_to_destination").Inc()
	plan, err := h.svc.WaypointsToDestination(r.Context(),
		datastructure.NewCoordinate(data.Lat, data.Lon), data.Heading,
		data.SpeedKnots, data.ObservedHours, data.NumObservations,
		datastructure.NewCoordinate(data.DstLat, data.DstLon), via)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewWaypointPlanResponse(plan))
}

// chainVoyage
//
//	@Summary		chain waypoint plans lane-by-lane until a port or open water
//	@Tags			routes
//	@Param			body	body	ChainVoyageRequest	true	"vessel observation"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/routes/chain [post]
//	@Success		200	{object}	ChainVoyageResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) chainVoyage(w http.ResponseWriter, r *http.Request) {
	data := &ChainVoyageRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := validateRequest(w, r, data); err != nil {
		return
	}

	h.promeMetrics.MatchQueryCount.WithLabelValues("chain").Inc()
	plans, err := h.svc.ChainVoyage(r.Context(),
		datastructure.NewCoordinate(data.Lat, data.Lon), data.Heading,
		data.SpeedKnots, data.ObservedHours, data.NumObservations)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewChainVoyageResponse(plans))
}

func (h *NavigationHandler) Hello(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, "Hello, World!")
}

// validateRequest renders the translated validation failure itself and
// returns the error only as a signal to stop the handler.
func validateRequest(w http.ResponseWriter, r *http.Request, data interface{}) error {
	validate := validator.New()
	if err := validate.Struct(data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return err
	}
	return nil
}

// ErrResponse model info
//
//	@Description	model for error responses
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	statusText := ""
	switch getStatusCode(err) {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusServiceUnavailable:
		statusText = "Service unavailable."
	case http.StatusBadGateway:
		statusText = "Upstream failure."
	case http.StatusBadRequest:
		statusText = "Bad request."
	default:
		statusText = "Error."
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: getStatusCode(err),
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ierr *domain.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	}
	switch ierr.Code() {
	case domain.ErrInternalServerError:
		return http.StatusInternalServerError
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrBadParamInput:
		return http.StatusBadRequest
	case domain.ErrDataUnavailable:
		return http.StatusServiceUnavailable
	case domain.ErrCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}
