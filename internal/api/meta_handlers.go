package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/loveletters/loveletters-server/internal/domain"
)

func (s *Server) registerMetaRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMeta",
		Method:      http.MethodGet,
		Path:        "/api/meta",
		Summary:     "Display catalog",
		Description: "Returns category and mood labels, emoji and colours, plus the preset authors",
		Tags:        []string{"Meta"},
	}, s.handleGetMeta)
}

// MetaResponse is the read-only display catalog.
type MetaResponse struct {
	Categories []domain.CategoryInfo `json:"categories" doc:"Categories in display order"`
	Moods      []domain.MoodInfo     `json:"moods" doc:"Moods in display order"`
	Authors    []domain.Author       `json:"authors" doc:"Preset authors"`
}

type MetaOutput struct {
	Body Envelope[MetaResponse]
}

func (s *Server) handleGetMeta(_ context.Context, _ *struct{}) (*MetaOutput, error) {
	return &MetaOutput{
		Body: ok(MetaResponse{
			Categories: domain.CategoryCatalog(),
			Moods:      domain.MoodCatalog(),
			Authors:    domain.PresetAuthors(),
		}, ""),
	}, nil
}
