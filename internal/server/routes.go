package server

import (
	"net/http"
	"time"

	"github.com/berfenger/solis2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gopkg.in/yaml.v3"
)

type capabilitiesResponse struct {
	Serial  string           `json:"serial" yaml:"serial"`
	Mask    string           `json:"mask" yaml:"mask"`
	Flags   []string         `json:"flags" yaml:"flags"`
	State   string           `json:"state" yaml:"state"`
	Sensors []sensorResponse `json:"sensors" yaml:"sensors"`
	Numbers []numberResponse `json:"numbers" yaml:"numbers"`
}

type sensorResponse struct {
	Key      string `json:"key" yaml:"key"`
	Name     string `json:"name" yaml:"name"`
	Register uint16 `json:"register" yaml:"register"`
	Unit     string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

type numberResponse struct {
	Key      string  `json:"key" yaml:"key"`
	Name     string  `json:"name" yaml:"name"`
	Register uint16  `json:"register" yaml:"register"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/capabilities", s.CapabilitiesHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

// CapabilitiesHandler reports the identified capability mask and the admitted points.
// ?format=yaml renders YAML instead of JSON.
func (s *Server) CapabilitiesHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetPointsRequest{}, 10*time.Second).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	points, ok := res.(domain.GetPointsResponse)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "unexpected response")
	}
	if points.HasResponseError() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, points.GetResponseError().Error())
	}

	resp := toCapabilitiesResponse(points)
	if c.QueryParam("format") == "yaml" {
		out, err := yaml.Marshal(resp)
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "application/yaml", out)
	}
	return c.JSON(http.StatusOK, resp)
}

func toCapabilitiesResponse(points domain.GetPointsResponse) capabilitiesResponse {
	id := points.Identification
	resp := capabilitiesResponse{
		Serial:  id.Serial,
		Mask:    id.Mask.String(),
		Flags:   []string{},
		State:   id.State.String(),
		Sensors: make([]sensorResponse, 0, len(points.Sensors)),
		Numbers: make([]numberResponse, 0, len(points.Numbers)),
	}
	for _, f := range id.Mask.Flags() {
		resp.Flags = append(resp.Flags, f.String())
	}
	for _, p := range points.Sensors {
		resp.Sensors = append(resp.Sensors, sensorResponse{
			Key:      p.Key,
			Name:     p.Name,
			Register: p.Register,
			Unit:     p.UnitOfMeasurement,
		})
	}
	for _, p := range points.Numbers {
		resp.Numbers = append(resp.Numbers, numberResponse{
			Key:      p.Key,
			Name:     p.Name,
			Register: p.Register,
			Min:      p.Min,
			Max:      p.Max,
		})
	}
	return resp
}
