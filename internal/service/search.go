package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loveletters/loveletters-server/internal/domain"
	"github.com/loveletters/loveletters-server/internal/search"
	"github.com/loveletters/loveletters-server/internal/store"
)

// SearchService keeps the ranked search index in step with the letter store.
// The index is derived data: it is rebuilt from the store at startup and
// failures to update it never fail the write that triggered them.
type SearchService struct {
	index  *search.SearchIndex
	store  store.LetterStore
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.LetterStore, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a ranked query against the index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexLetter adds or replaces a single letter.
func (s *SearchService) IndexLetter(_ context.Context, letter *domain.Letter) error {
	if err := s.index.IndexDocument(search.LetterToDocument(letter)); err != nil {
		return fmt.Errorf("index letter: %w", err)
	}
	s.logger.Debug("indexed letter", "id", letter.ID)
	return nil
}

// DeleteLetter removes a letter from the index.
func (s *SearchService) DeleteLetter(_ context.Context, letterID string) error {
	return s.index.DeleteDocument(letterID)
}

// DocumentCount returns the number of indexed letters.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll drops the index and rebuilds it from every stored letter.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	letters, err := s.store.ListLetters(ctx, store.ListFilter{})
	if err != nil {
		return 0, fmt.Errorf("list letters: %w", err)
	}

	docs := make([]*search.LetterDocument, 0, len(letters))
	for _, l := range letters {
		docs = append(docs, search.LetterToDocument(l))
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return 0, fmt.Errorf("index letters: %w", err)
		}
	}

	s.logger.Info("full reindex complete", "letters", len(docs))
	return len(docs), nil
}
