package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/loveletters/loveletters-server/internal/config"
	domainerrors "github.com/loveletters/loveletters-server/internal/errors"
	"github.com/loveletters/loveletters-server/internal/search"
	"github.com/loveletters/loveletters-server/internal/service"
)

// SearchHandle holds the search index and its service. Both are nil when
// search is disabled.
type SearchHandle struct {
	Index   *search.SearchIndex
	Service *service.SearchService
}

// Shutdown implements do.Shutdownable.
func (h *SearchHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Index.Close()
}

// ProvideSearch provides the Bleve index and the search service.
func ProvideSearch(i do.Injector) (*SearchHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	if !cfg.Search.Enabled {
		log.Info("Search disabled by configuration")
		return &SearchHandle{}, nil
	}

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Search.Path,
		Logger:   log.Logger.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount, "in_memory", cfg.Search.Path == "")

	return &SearchHandle{
		Index:   index,
		Service: service.NewSearchService(index, storeHandle.Store, log.Logger.Logger),
	}, nil
}

// ReindexSearch rebuilds the index from the store when its document count
// differs from the number of letters. An in-memory index always starts empty.
// With search disabled it does nothing.
func ReindexSearch(ctx context.Context, i do.Injector) error {
	handle := do.MustInvoke[*SearchHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	letters := do.MustInvoke[*service.LetterService](i)
	log := do.MustInvoke[*LoggerHandle](i)

	if handle.Service != nil {
		stats, err := storeHandle.LetterStats(ctx, nowUTC())
		if err != nil {
			return err
		}
		docCount, err := handle.Service.DocumentCount()
		if err == nil && docCount == uint64(stats.Total) {
			return nil
		}

		log.Info("Search index out of date, reindexing",
			"documents", docCount,
			"letters", stats.Total,
		)
	}

	n, err := letters.Reindex(ctx)
	if errors.Is(err, domainerrors.ErrUnavailable) {
		log.Debug("Search disabled, skipping reindex")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("Search reindex completed", "documents", n)
	return nil
}
