package search

import (
	"context"
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/loveletters/loveletters-server/internal/normalize"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	Category      string
	Mood          string
	Author        string
	FavoritesOnly bool

	// Pagination
	Limit  int
	Offset int

	// Sorting: "relevance" (default) or "recent"
	SortBy string

	// Options
	IncludeFacets bool // Include category and mood counts
	Highlight     bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        "relevance",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"tookMs"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets"`
}

// SearchHit represents a single ranked letter.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Recipient  string            `json:"recipient"`
	Author     string            `json:"author"`
	Category   string            `json:"category,omitempty"`
	Mood       string            `json:"mood,omitempty"`
	IsFavorite bool              `json:"isFavorite"`
	CreatedAt  time.Time         `json:"createdAt"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Categories []FacetCount `json:"categories,omitempty"`
	Moods      []FacetCount `json:"moods,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)

	if params.SortBy == "recent" {
		searchRequest.SortBy([]string{"-created_at", "-_score"})
	} else {
		searchRequest.SortBy([]string{"-_score", "-created_at"})
	}

	if params.IncludeFacets {
		searchRequest.AddFacet("category", bleve.NewFacetRequest("category", 10))
		searchRequest.AddFacet("mood", bleve.NewFacetRequest("mood", 10))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("content")
	}

	searchRequest.Fields = []string{
		"title", "recipient", "author", "category", "mood", "is_favorite", "created_at",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if v, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = v
		}
		if v, ok := hit.Fields["recipient"].(string); ok {
			searchHit.Recipient = v
		}
		if v, ok := hit.Fields["author"].(string); ok {
			searchHit.Author = v
		}
		if v, ok := hit.Fields["category"].(string); ok {
			searchHit.Category = v
		}
		if v, ok := hit.Fields["mood"].(string); ok {
			searchHit.Mood = v
		}
		if v, ok := hit.Fields["is_favorite"].(bool); ok {
			searchHit.IsFavorite = v
		}
		if v, ok := hit.Fields["created_at"].(float64); ok {
			searchHit.CreatedAt = time.UnixMilli(int64(v)).UTC()
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
// Text matches are OR-ed across fields; filters are AND-ed with them.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		contentMatch := bleve.NewMatchQuery(params.Query)
		contentMatch.SetField("content")
		contentMatch.SetBoost(1.5)
		textQueries = append(textQueries, contentMatch)

		recipientMatch := bleve.NewMatchQuery(params.Query)
		recipientMatch.SetField("recipient")
		textQueries = append(textQueries, recipientMatch)

		tagsMatch := bleve.NewMatchQuery(params.Query)
		tagsMatch.SetField("tags")
		tagsMatch.SetBoost(2.0)
		textQueries = append(textQueries, tagsMatch)

		// Typo tolerance on titles.
		titleFuzzy := bleve.NewMatchQuery(params.Query)
		titleFuzzy.SetField("title")
		titleFuzzy.SetFuzziness(1)
		titleFuzzy.SetBoost(0.8)
		textQueries = append(textQueries, titleFuzzy)

		// Prefix query for autocomplete (minimum 2 chars)
		if folded := normalize.Fold(params.Query); len([]rune(folded)) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(folded)
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.Category != "" {
		q := bleve.NewTermQuery(params.Category)
		q.SetField("category")
		queries = append(queries, q)
	}

	if params.Mood != "" {
		q := bleve.NewTermQuery(params.Mood)
		q.SetField("mood")
		queries = append(queries, q)
	}

	if params.Author != "" {
		q := bleve.NewMatchQuery(params.Author)
		q.SetField("author")
		q.SetOperator(query.MatchQueryOperatorAnd)
		queries = append(queries, q)
	}

	if params.FavoritesOnly {
		q := bleve.NewBoolFieldQuery(true)
		q.SetField("is_favorite")
		queries = append(queries, q)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if categoryFacet, ok := result.Facets["category"]; ok && categoryFacet.Terms != nil {
		for _, term := range categoryFacet.Terms.Terms() {
			facets.Categories = append(facets.Categories, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if moodFacet, ok := result.Facets["mood"]; ok && moodFacet.Terms != nil {
		for _, term := range moodFacet.Terms.Terms() {
			facets.Moods = append(facets.Moods, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
