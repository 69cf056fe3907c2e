package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/loveletters/loveletters-server/internal/search"
	"github.com/loveletters/loveletters-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchLetters",
		Method:      http.MethodGet,
		Path:        "/api/search",
		Summary:     "Search letters",
		Description: "Relevance-ranked full-text search over titles, content, recipients and tags. Returns 503 when search is disabled.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching letters.
type SearchInput struct {
	Query     string `query:"q" doc:"Search query"`
	Category  string `query:"category" doc:"Restrict to a category"`
	Mood      string `query:"mood" doc:"Restrict to a mood"`
	Author    string `query:"author" doc:"Restrict to an author"`
	Favorites bool   `query:"favorites" doc:"Only favorite letters"`
	Sort      string `query:"sort" doc:"relevance (default) or recent"`
	Limit     int    `query:"limit" doc:"Max results (default 20, max 100)"`
}

// SearchOutput wraps the ranked result for Huma.
type SearchOutput struct {
	Body Envelope[*search.SearchResult]
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Letters.Search(ctx, service.SearchLettersRequest{
		Query:         input.Query,
		Category:      input.Category,
		Mood:          input.Mood,
		Author:        input.Author,
		FavoritesOnly: input.Favorites,
		Sort:          input.Sort,
		Limit:         input.Limit,
	})
	if err != nil {
		return nil, err
	}

	body := ok(result, "")
	hits := len(result.Hits)
	body.Count = &hits
	return &SearchOutput{Body: body}, nil
}
