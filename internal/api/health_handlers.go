package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "apiInfo",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "API info",
		Description: "Returns the API name, version and endpoint map",
		Tags:        []string{"Health"},
	}, s.handleAPIInfo)

	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// APIInfoResponse describes the API root.
type APIInfoResponse struct {
	Message   string            `json:"message" doc:"API name"`
	Version   string            `json:"version" doc:"API version"`
	Endpoints map[string]string `json:"endpoints" doc:"Endpoint map"`
}

func (APIInfoResponse) finalBody() {}

// APIInfoOutput wraps the API info for Huma.
type APIInfoOutput struct {
	Body APIInfoResponse
}

func (s *Server) handleAPIInfo(_ context.Context, _ *struct{}) (*APIInfoOutput, error) {
	return &APIInfoOutput{
		Body: APIInfoResponse{
			Message: "Love Letters API",
			Version: s.opts.Version,
			Endpoints: map[string]string{
				"health":  "/health",
				"letters": "/api/letters",
				"stats":   "/api/letters/stats/summary",
				"export":  "/api/letters/export",
				"search":  "/api/search",
				"meta":    "/api/meta",
				"docs":    "/docs",
			},
		},
	}, nil
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, unhealthy or disabled"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Timestamp  time.Time                  `json:"timestamp" doc:"Server time of the check"`
	Uptime     float64                    `json:"uptime" doc:"Seconds since the server started"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

func (HealthResponse) finalBody() {}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	dbHealth := s.checkDatabase(ctx)
	components["database"] = dbHealth
	if dbHealth.Status != "healthy" {
		overall = "unhealthy"
	}

	searchHealth := s.checkSearchIndex()
	components["search"] = searchHealth
	if searchHealth.Status == "unhealthy" && overall == "healthy" {
		overall = "degraded"
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Timestamp:  time.Now().UTC(),
			Uptime:     time.Since(s.startedAt).Seconds(),
			Components: components,
		},
	}, nil
}

// checkDatabase verifies the letter store is reachable.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	// Handle nil store (e.g., in tests)
	if s.store == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "database not configured",
		}
	}

	start := time.Now()
	err := s.store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "database ping failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkSearchIndex verifies the Bleve index is accessible. A disabled index
// does not affect overall health; an unreachable one degrades it.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services == nil || s.services.Search == nil {
		return ComponentHealth{
			Status:  "disabled",
			Message: "search is disabled",
		}
	}

	start := time.Now()
	docCount, err := s.services.Search.DocumentCount()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "search index unreachable",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: formatIndexStatus(docCount),
	}
}

func formatIndexStatus(count uint64) string {
	if count == 1 {
		return "1 letter indexed"
	}
	return strconv.FormatUint(count, 10) + " letters indexed"
}
