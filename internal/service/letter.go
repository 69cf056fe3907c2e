package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/loveletters/loveletters-server/internal/domain"
	domainerrors "github.com/loveletters/loveletters-server/internal/errors"
	"github.com/loveletters/loveletters-server/internal/id"
	"github.com/loveletters/loveletters-server/internal/normalize"
	"github.com/loveletters/loveletters-server/internal/search"
	"github.com/loveletters/loveletters-server/internal/store"
	"github.com/loveletters/loveletters-server/internal/validation"
)

// LetterService orchestrates letter operations: validation, normalization,
// ID and timestamp assignment, and search index upkeep.
//
// Every mutating call takes the acting author explicitly. It is recorded in
// the logs and fills in the author of a new letter when the body omits one.
type LetterService struct {
	store     store.LetterStore
	search *SearchService
	logger *slog.Logger
	now    func() time.Time
}

// validate is shared by every request type. validator.Validate is safe for
// concurrent use.
var validate = validation.New()

// NewLetterService creates a new letter service. searchService may be nil
// when search is disabled.
func NewLetterService(store store.LetterStore, searchService *SearchService, logger *slog.Logger) *LetterService {
	return &LetterService{
		store:  store,
		search: searchService,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source.
func (s *LetterService) SetClock(now func() time.Time) {
	s.now = now
}

// ListLettersRequest carries the raw list query parameters.
type ListLettersRequest struct {
	Category   string `json:"category" validate:"omitempty,category"`
	Mood       string `json:"mood" validate:"omitempty,mood"`
	IsFavorite string `json:"isFavorite" validate:"omitempty,oneof=true false 1 0"`
	Recipient  string `json:"recipient"`
	Author     string `json:"author"`
	Search     string `json:"search"`
	From       string `json:"from" validate:"omitempty,date"`
	To         string `json:"to" validate:"omitempty,date"`
}

// filter converts a validated request into a store filter. A date-only
// upper bound covers the whole of that day.
func (r ListLettersRequest) filter() store.ListFilter {
	f := store.ListFilter{
		Category:  domain.Category(r.Category),
		Mood:      domain.Mood(r.Mood),
		Recipient: normalize.Text(r.Recipient),
		Author:    normalize.Text(r.Author),
		Search:    normalize.Text(r.Search),
	}

	switch r.IsFavorite {
	case "true", "1":
		fav := true
		f.IsFavorite = &fav
	case "false", "0":
		fav := false
		f.IsFavorite = &fav
	}

	if r.From != "" {
		from, _, _ := validation.ParseDate(r.From)
		from = from.UTC()
		f.CreatedFrom = &from
	}
	if r.To != "" {
		to, dateOnly, _ := validation.ParseDate(r.To)
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		to = to.UTC()
		f.CreatedTo = &to
	}

	return f
}

// ListLetters returns the letters matching every supplied filter, newest first.
func (s *LetterService) ListLetters(ctx context.Context, req ListLettersRequest) ([]*domain.Letter, error) {
	req.Category = strings.TrimSpace(req.Category)
	req.Mood = strings.TrimSpace(req.Mood)
	req.IsFavorite = strings.TrimSpace(req.IsFavorite)
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	letters, err := s.store.ListLetters(ctx, req.filter())
	if err != nil {
		return nil, s.storageFailure("list letters", err)
	}
	return letters, nil
}

// GetLetter returns a single letter.
func (s *LetterService) GetLetter(ctx context.Context, letterID string) (*domain.Letter, error) {
	letter, err := s.store.GetLetter(ctx, letterID)
	if err != nil {
		return nil, s.storageFailure("get letter", err, "id", letterID)
	}
	return letter, nil
}

// CreateLetterRequest contains fields for creating a letter.
type CreateLetterRequest struct {
	Title     string   `json:"title" validate:"notblank,max=100"`
	Content   string   `json:"content" validate:"notblank"`
	Recipient string   `json:"recipient" validate:"notblank,max=50"`
	Author    string   `json:"author" validate:"notblank,max=50"`
	Category  string   `json:"category" validate:"required,category"`
	Mood      string   `json:"mood" validate:"required,mood"`
	Tags      []string `json:"tags"`
}

func (r *CreateLetterRequest) normalize() {
	r.Title = normalize.Text(r.Title)
	r.Content = normalize.Text(r.Content)
	r.Recipient = normalize.Text(r.Recipient)
	r.Author = normalize.Text(r.Author)
	r.Category = strings.TrimSpace(r.Category)
	r.Mood = strings.TrimSpace(r.Mood)
	r.Tags = normalize.Tags(r.Tags)
}

// prepare normalizes the request, fills a blank author from actor and
// validates the result.
func (r *CreateLetterRequest) prepare(actor string) error {
	r.normalize()
	if r.Author == "" {
		r.Author = actor
	}
	return validate.Validate(r)
}

// Check reports every field violation CreateLetter would reject req for,
// without storing anything.
func (r CreateLetterRequest) Check(actor string) error {
	return r.prepare(normalize.Text(actor))
}

// CreateLetter validates and stores a new letter. A blank author falls back
// to the actor.
func (s *LetterService) CreateLetter(ctx context.Context, actor string, req CreateLetterRequest) (*domain.Letter, error) {
	actor = normalize.Text(actor)
	if err := req.prepare(actor); err != nil {
		return nil, err
	}

	letterID, err := id.NewLetterID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate letter id")
	}

	now := s.now()
	letter := &domain.Letter{
		ID:        letterID,
		Title:     req.Title,
		Content:   req.Content,
		Recipient: req.Recipient,
		Author:    req.Author,
		Category:  domain.Category(req.Category),
		Mood:      domain.Mood(req.Mood),
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateLetter(ctx, letter); err != nil {
		return nil, s.storageFailure("create letter", err, "actor", actor)
	}

	s.indexLetter(ctx, letter)
	s.logger.Info("letter created", "id", letter.ID, "actor", actorOr(actor, letter.Author), "category", letter.Category)
	return letter, nil
}

// UpdateLetterRequest contains fields for updating a letter. Only supplied
// fields are validated and changed.
type UpdateLetterRequest struct {
	Title     *string   `json:"title,omitempty" validate:"omitnil,notblank,max=100"`
	Content   *string   `json:"content,omitempty" validate:"omitnil,notblank"`
	Recipient *string   `json:"recipient,omitempty" validate:"omitnil,notblank,max=50"`
	Author    *string   `json:"author,omitempty" validate:"omitnil,notblank,max=50"`
	Category  *string   `json:"category,omitempty" validate:"omitnil,category"`
	Mood      *string   `json:"mood,omitempty" validate:"omitnil,mood"`
	Tags      *[]string `json:"tags,omitempty"`
}

// normalize replaces the supplied fields with trimmed copies. The caller's
// strings are left untouched.
func (r *UpdateLetterRequest) normalize() {
	for _, field := range []**string{&r.Title, &r.Content, &r.Recipient, &r.Author} {
		*field = mapString(*field, normalize.Text)
	}
	for _, field := range []**string{&r.Category, &r.Mood} {
		*field = mapString(*field, strings.TrimSpace)
	}
	if r.Tags != nil {
		tags := normalize.Tags(*r.Tags)
		r.Tags = &tags
	}
}

func mapString(s *string, f func(string) string) *string {
	if s == nil {
		return nil
	}
	v := f(*s)
	return &v
}

// Check reports every field violation UpdateLetter would reject req for.
func (r UpdateLetterRequest) Check() error {
	r.normalize()
	return validate.Validate(r)
}

func (r UpdateLetterRequest) patch() domain.LetterPatch {
	p := domain.LetterPatch{
		Title:     r.Title,
		Content:   r.Content,
		Recipient: r.Recipient,
		Author:    r.Author,
		Tags:      r.Tags,
	}
	if r.Category != nil {
		c := domain.Category(*r.Category)
		p.Category = &c
	}
	if r.Mood != nil {
		m := domain.Mood(*r.Mood)
		p.Mood = &m
	}
	return p
}

// UpdateLetter applies a partial update. ID and CreatedAt never change and
// UpdatedAt never moves backwards.
func (s *LetterService) UpdateLetter(ctx context.Context, actor, letterID string, req UpdateLetterRequest) (*domain.Letter, error) {
	req.normalize()
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	patch := req.patch()
	if patch.IsEmpty() {
		s.logger.Debug("update carries no fields, touching timestamp only", "id", letterID)
	}

	letter, err := s.store.UpdateLetter(ctx, letterID, patch, s.now())
	if err != nil {
		return nil, s.storageFailure("update letter", err, "id", letterID, "actor", actor)
	}

	s.indexLetter(ctx, letter)
	s.logger.Info("letter updated", "id", letter.ID, "actor", actorOr(normalize.Text(actor), letter.Author))
	return letter, nil
}

// ToggleFavorite flips the favorite flag.
func (s *LetterService) ToggleFavorite(ctx context.Context, actor, letterID string) (*domain.Letter, error) {
	letter, err := s.store.ToggleFavorite(ctx, letterID, s.now())
	if err != nil {
		return nil, s.storageFailure("toggle favorite", err, "id", letterID, "actor", actor)
	}

	s.indexLetter(ctx, letter)
	s.logger.Info("letter favorite toggled",
		"id", letter.ID,
		"actor", actorOr(normalize.Text(actor), letter.Author),
		"favorite", letter.IsFavorite,
	)
	return letter, nil
}

// DeleteLetter removes a letter and returns it as it was.
func (s *LetterService) DeleteLetter(ctx context.Context, actor, letterID string) (*domain.Letter, error) {
	letter, err := s.store.DeleteLetter(ctx, letterID)
	if err != nil {
		return nil, s.storageFailure("delete letter", err, "id", letterID, "actor", actor)
	}

	if s.search != nil {
		if err := s.search.DeleteLetter(ctx, letter.ID); err != nil {
			s.logger.Warn("failed to remove letter from search index", "id", letter.ID, "error", err)
		}
	}
	s.logger.Info("letter deleted", "id", letter.ID, "actor", actorOr(normalize.Text(actor), letter.Author))
	return letter, nil
}

// Stats aggregates the collection relative to the current month.
func (s *LetterService) Stats(ctx context.Context) (*domain.LetterStats, error) {
	stats, err := s.store.LetterStats(ctx, s.now())
	if err != nil {
		return nil, s.storageFailure("letter stats", err)
	}
	return stats, nil
}

// SearchLettersRequest carries a ranked search query.
type SearchLettersRequest struct {
	Query         string `json:"q" validate:"max=200"`
	Category      string `json:"category" validate:"omitempty,category"`
	Mood          string `json:"mood" validate:"omitempty,mood"`
	Author        string `json:"author" validate:"max=50"`
	FavoritesOnly bool   `json:"favorites"`
	Sort          string `json:"sort" validate:"omitempty,oneof=relevance recent"`
	Limit         int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

// Search runs a relevance-ranked query. It is an addition to the substring
// filters of ListLetters, not a replacement.
func (s *LetterService) Search(ctx context.Context, req SearchLettersRequest) (*search.SearchResult, error) {
	if s.search == nil {
		return nil, domainerrors.Unavailable("search is disabled")
	}

	req.Query = normalize.Text(req.Query)
	req.Author = normalize.Text(req.Author)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = req.Query
	params.Category = req.Category
	params.Mood = req.Mood
	params.Author = req.Author
	params.FavoritesOnly = req.FavoritesOnly
	if req.Sort != "" {
		params.SortBy = req.Sort
	}
	if req.Limit > 0 {
		params.Limit = req.Limit
	}

	result, err := s.search.Search(ctx, params)
	if err != nil {
		s.logger.Error("search failed", "query", req.Query, "error", err)
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}
	return result, nil
}

// Reindex rebuilds the search index from the store.
func (s *LetterService) Reindex(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, domainerrors.Unavailable("search is disabled")
	}
	return s.search.ReindexAll(ctx)
}

// ExportDocument is the portable form of the whole collection. It uses the
// same shape that Import accepts.
type ExportDocument struct {
	ExportedAt time.Time        `json:"exportedAt"`
	Count      int              `json:"count"`
	Letters    []*domain.Letter `json:"letters"`
}

// Export returns every letter, newest first.
func (s *LetterService) Export(ctx context.Context) (*ExportDocument, error) {
	letters, err := s.store.ListLetters(ctx, store.ListFilter{})
	if err != nil {
		return nil, s.storageFailure("export letters", err)
	}
	return &ExportDocument{
		ExportedAt: s.now(),
		Count:      len(letters),
		Letters:    letters,
	}, nil
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported int            `json:"imported"`
	Skipped  int            `json:"skipped"`
	Invalid  []ImportReject `json:"invalid"`
}

// ImportReject describes a letter that failed validation during import.
type ImportReject struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Import stores letters from an export or legacy document, keeping their IDs
// and timestamps. Letters whose ID already exists are skipped, and invalid
// letters are reported without aborting the rest.
func (s *LetterService) Import(ctx context.Context, actor string, letters []*domain.Letter) (*ImportResult, error) {
	result := &ImportResult{Invalid: []ImportReject{}}
	now := s.now()

	for i, in := range letters {
		if in == nil {
			result.Invalid = append(result.Invalid, ImportReject{Index: i, Reason: "empty entry"})
			continue
		}

		req := CreateLetterRequest{
			Title:     in.Title,
			Content:   in.Content,
			Recipient: in.Recipient,
			Author:    in.Author,
			Category:  string(in.Category),
			Mood:      string(in.Mood),
			Tags:      in.Tags,
		}
		req.normalize()
		if err := validate.Validate(req); err != nil {
			result.Invalid = append(result.Invalid, ImportReject{Index: i, ID: in.ID, Reason: rejectReason(err)})
			continue
		}

		letter := &domain.Letter{
			ID:         strings.TrimSpace(in.ID),
			Title:      req.Title,
			Content:    req.Content,
			Recipient:  req.Recipient,
			Author:     req.Author,
			Category:   domain.Category(req.Category),
			Mood:       domain.Mood(req.Mood),
			Tags:       req.Tags,
			IsFavorite: in.IsFavorite,
			CreatedAt:  in.CreatedAt.UTC(),
			UpdatedAt:  in.UpdatedAt.UTC(),
		}
		if letter.ID == "" {
			letterID, err := id.NewLetterID()
			if err != nil {
				return result, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate letter id")
			}
			letter.ID = letterID
		}
		if in.CreatedAt.IsZero() {
			letter.CreatedAt = now
		}
		letter.Touch(letter.CreatedAt)

		inserted, err := s.store.ImportLetter(ctx, letter)
		if err != nil {
			return result, s.storageFailure("import letter", err, "id", letter.ID)
		}
		if !inserted {
			result.Skipped++
			continue
		}
		result.Imported++
		s.indexLetter(ctx, letter)
	}

	s.logger.Info("letters imported",
		"actor", actor,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"invalid", len(result.Invalid),
	)
	return result, nil
}

// indexLetter updates the search index. Failures are logged only.
func (s *LetterService) indexLetter(ctx context.Context, letter *domain.Letter) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexLetter(ctx, letter); err != nil {
		s.logger.Warn("failed to index letter", "id", letter.ID, "error", err)
	}
}

// storageFailure logs errors that are not an expected not-found or bad
// input outcome, and returns err unchanged.
func (s *LetterService) storageFailure(op string, err error, attrs ...any) error {
	var storeErr *store.Error
	if errors.As(err, &storeErr) && storeErr.HTTPCode() < 500 {
		return err
	}
	s.logger.Error("failed to "+op, append(attrs, "error", err)...)
	return err
}

func rejectReason(err error) string {
	var domainErr *domainerrors.Error
	if !errors.Is(err, domainerrors.ErrValidation) || !errors.As(err, &domainErr) {
		return err.Error()
	}
	fields, ok := domainErr.Details.(map[string]string)
	if !ok || len(fields) == 0 {
		return domainErr.Message
	}
	parts := make([]string, 0, len(fields))
	for _, name := range []string{"title", "content", "recipient", "author", "category", "mood"} {
		if msg, ok := fields[name]; ok {
			parts = append(parts, name+" "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

func actorOr(actor, fallback string) string {
	if actor != "" {
		return actor
	}
	return fallback
}
