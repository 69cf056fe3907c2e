package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/loveletters/loveletters-server/internal/domain"
	"github.com/loveletters/loveletters-server/internal/service"
)

func (s *Server) registerLetterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLetters",
		Method:      http.MethodGet,
		Path:        "/api/letters",
		Summary:     "List letters",
		Description: "Returns letters matching every supplied filter, newest first",
		Tags:        []string{"Letters"},
	}, s.handleListLetters)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLetterStats",
		Method:      http.MethodGet,
		Path:        "/api/letters/stats/summary",
		Summary:     "Letter statistics",
		Description: "Returns totals, favorites, this month's count and per-category, mood and recipient counts",
		Tags:        []string{"Letters"},
	}, s.handleGetLetterStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportLetters",
		Method:      http.MethodGet,
		Path:        "/api/letters/export",
		Summary:     "Export letters",
		Description: "Returns every letter as a portable document that cmd/seed can import",
		Tags:        []string{"Letters"},
	}, s.handleExportLetters)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLetter",
		Method:      http.MethodGet,
		Path:        "/api/letters/{id}",
		Summary:     "Get letter",
		Description: "Returns a letter by ID",
		Tags:        []string{"Letters"},
	}, s.handleGetLetter)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createLetter",
		Method:        http.MethodPost,
		Path:          "/api/letters",
		Summary:       "Create letter",
		Description:   "Creates a new letter",
		Tags:          []string{"Letters"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateLetter)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLetter",
		Method:      http.MethodPut,
		Path:        "/api/letters/{id}",
		Summary:     "Update letter",
		Description: "Updates the supplied fields of a letter",
		Tags:        []string{"Letters"},
	}, s.handleUpdateLetter)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPatch,
		Path:        "/api/letters/{id}/favorite",
		Summary:     "Toggle favorite",
		Description: "Flips the favorite flag of a letter",
		Tags:        []string{"Letters"},
	}, s.handleToggleFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteLetter",
		Method:      http.MethodDelete,
		Path:        "/api/letters/{id}",
		Summary:     "Delete letter",
		Description: "Deletes a letter and returns it as it was",
		Tags:        []string{"Letters"},
	}, s.handleDeleteLetter)
}

// === DTOs ===

type ListLettersInput struct {
	Category   string `query:"category" doc:"Exact category"`
	Mood       string `query:"mood" doc:"Exact mood"`
	IsFavorite string `query:"isFavorite" doc:"true, false, 1 or 0"`
	Recipient  string `query:"recipient" doc:"Case-insensitive recipient substring"`
	Author     string `query:"author" doc:"Case-insensitive author name"`
	Search     string `query:"search" doc:"Case-insensitive substring of title, content, recipient or a tag"`
	From       string `query:"from" doc:"Earliest creation time, RFC 3339 or YYYY-MM-DD"`
	To         string `query:"to" doc:"Latest creation time, RFC 3339 or YYYY-MM-DD (whole day)"`
}

type ListLettersOutput struct {
	Body Envelope[[]*domain.Letter]
}

type LetterIDInput struct {
	ID string `path:"id" doc:"Letter ID"`
}

type LetterOutput struct {
	Body Envelope[*domain.Letter]
}

// CreateLetterRequest is the body for creating a letter. Field rules are
// enforced by the service so every violation is reported at once.
type CreateLetterRequest struct {
	_         struct{} `additionalProperties:"true"`
	Title     string   `json:"title,omitempty" doc:"Title, 1-100 characters"`
	Content   string   `json:"content,omitempty" doc:"Letter body"`
	Recipient string   `json:"recipient,omitempty" doc:"Recipient name, 1-50 characters"`
	Author    string   `json:"author,omitempty" doc:"Author name, 1-50 characters; defaults to the X-Letter-Author header"`
	Category  string   `json:"category,omitempty" doc:"Occasion category"`
	Mood      string   `json:"mood,omitempty" doc:"Emotional tone"`
	Tags      []string `json:"tags,omitempty" doc:"Free-form tags"`

	decoded bool
}

// UnmarshalJSON records that the body was well-formed JSON. Fields of the
// wrong type are left zero and reported by the schema check.
func (r *CreateLetterRequest) UnmarshalJSON(data []byte) error {
	type plain CreateLetterRequest
	err := json.Unmarshal(data, (*plain)(r))
	r.decoded = true
	return err
}

func (r CreateLetterRequest) toService() service.CreateLetterRequest {
	return service.CreateLetterRequest{
		Title:     r.Title,
		Content:   r.Content,
		Recipient: r.Recipient,
		Author:    r.Author,
		Category:  r.Category,
		Mood:      r.Mood,
		Tags:      r.Tags,
	}
}

type CreateLetterInput struct {
	Author string `header:"X-Letter-Author" doc:"Acting author"`
	Body   CreateLetterRequest
}

// Resolve runs the letter field rules on whatever part of the body decoded,
// so they are reported together with any schema errors.
func (in *CreateLetterInput) Resolve(_ huma.Context) []error {
	if !in.Body.decoded {
		return nil
	}
	return bodyFieldErrors(in.Body.toService().Check(in.Author))
}

// UpdateLetterRequest is the body for updating a letter. Omitted fields
// keep their current value.
type UpdateLetterRequest struct {
	_         struct{}  `additionalProperties:"true"`
	Title     *string   `json:"title,omitempty" doc:"Title, 1-100 characters"`
	Content   *string   `json:"content,omitempty" doc:"Letter body"`
	Recipient *string   `json:"recipient,omitempty" doc:"Recipient name, 1-50 characters"`
	Author    *string   `json:"author,omitempty" doc:"Author name, 1-50 characters"`
	Category  *string   `json:"category,omitempty" doc:"Occasion category"`
	Mood      *string   `json:"mood,omitempty" doc:"Emotional tone"`
	Tags      *[]string `json:"tags,omitempty" doc:"Replacement tag list"`

	decoded bool
}

// UnmarshalJSON records that the body was well-formed JSON.
func (r *UpdateLetterRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateLetterRequest
	err := json.Unmarshal(data, (*plain)(r))
	r.decoded = true
	return err
}

func (r UpdateLetterRequest) toService() service.UpdateLetterRequest {
	return service.UpdateLetterRequest{
		Title:     r.Title,
		Content:   r.Content,
		Recipient: r.Recipient,
		Author:    r.Author,
		Category:  r.Category,
		Mood:      r.Mood,
		Tags:      r.Tags,
	}
}

type UpdateLetterInput struct {
	ID     string `path:"id" doc:"Letter ID"`
	Author string `header:"X-Letter-Author" doc:"Acting author"`
	Body   UpdateLetterRequest
}

// Resolve runs the update field rules on the decoded part of the body.
func (in *UpdateLetterInput) Resolve(_ huma.Context) []error {
	if !in.Body.decoded {
		return nil
	}
	return bodyFieldErrors(in.Body.toService().Check())
}

type LetterActionInput struct {
	ID     string `path:"id" doc:"Letter ID"`
	Author string `header:"X-Letter-Author" doc:"Acting author"`
}

type LetterStatsOutput struct {
	Body Envelope[*domain.LetterStats]
}

type ExportLettersOutput struct {
	ContentDisposition string `header:"Content-Disposition"`
	Body               Envelope[*service.ExportDocument]
}

// === Handlers ===

func (s *Server) handleListLetters(ctx context.Context, input *ListLettersInput) (*ListLettersOutput, error) {
	letters, err := s.services.Letters.ListLetters(ctx, service.ListLettersRequest{
		Category:   input.Category,
		Mood:       input.Mood,
		IsFavorite: input.IsFavorite,
		Recipient:  input.Recipient,
		Author:     input.Author,
		Search:     input.Search,
		From:       input.From,
		To:         input.To,
	})
	if err != nil {
		return nil, err
	}
	return &ListLettersOutput{Body: list(letters)}, nil
}

func (s *Server) handleGetLetter(ctx context.Context, input *LetterIDInput) (*LetterOutput, error) {
	letter, err := s.services.Letters.GetLetter(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &LetterOutput{Body: ok(letter, "")}, nil
}

func (s *Server) handleCreateLetter(ctx context.Context, input *CreateLetterInput) (*LetterOutput, error) {
	letter, err := s.services.Letters.CreateLetter(ctx, input.Author, input.Body.toService())
	if err != nil {
		return nil, err
	}
	return &LetterOutput{Body: ok(letter, "Letter created")}, nil
}

func (s *Server) handleUpdateLetter(ctx context.Context, input *UpdateLetterInput) (*LetterOutput, error) {
	letter, err := s.services.Letters.UpdateLetter(ctx, input.Author, input.ID, input.Body.toService())
	if err != nil {
		return nil, err
	}
	return &LetterOutput{Body: ok(letter, "Letter updated")}, nil
}

func (s *Server) handleToggleFavorite(ctx context.Context, input *LetterActionInput) (*LetterOutput, error) {
	letter, err := s.services.Letters.ToggleFavorite(ctx, input.Author, input.ID)
	if err != nil {
		return nil, err
	}

	message := "Letter removed from favorites"
	if letter.IsFavorite {
		message = "Letter marked as favorite"
	}
	return &LetterOutput{Body: ok(letter, message)}, nil
}

func (s *Server) handleDeleteLetter(ctx context.Context, input *LetterActionInput) (*LetterOutput, error) {
	letter, err := s.services.Letters.DeleteLetter(ctx, input.Author, input.ID)
	if err != nil {
		return nil, err
	}
	return &LetterOutput{Body: ok(letter, "Letter deleted")}, nil
}

func (s *Server) handleGetLetterStats(ctx context.Context, _ *struct{}) (*LetterStatsOutput, error) {
	stats, err := s.services.Letters.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &LetterStatsOutput{Body: ok(stats, "")}, nil
}

func (s *Server) handleExportLetters(ctx context.Context, _ *struct{}) (*ExportLettersOutput, error) {
	doc, err := s.services.Letters.Export(ctx)
	if err != nil {
		return nil, err
	}

	filename := "love-letters-" + doc.ExportedAt.Format("2006-01-02") + ".json"
	return &ExportLettersOutput{
		ContentDisposition: `attachment; filename="` + filename + `"`,
		Body:               ok(doc, ""),
	}, nil
}
