// Package search provides ranked full-text search over letters using Bleve.
// It complements the substring filters of the letter store with relevance
// ordering, Spanish stemming, typo tolerance and facet counts.
package search

import (
	"github.com/loveletters/loveletters-server/internal/domain"
)

// LetterDocument is the indexed form of a letter.
type LetterDocument struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Recipient  string   `json:"recipient"`
	Author     string   `json:"author"`
	Category   string   `json:"category"`
	Mood       string   `json:"mood"`
	Tags       []string `json:"tags,omitempty"`
	IsFavorite bool     `json:"is_favorite"`
	CreatedAt  int64    `json:"created_at"` // Unix millis
}

// LetterToDocument converts a letter to its search document.
func LetterToDocument(l *domain.Letter) *LetterDocument {
	return &LetterDocument{
		ID:         l.ID,
		Title:      l.Title,
		Content:    l.Content,
		Recipient:  l.Recipient,
		Author:     l.Author,
		Category:   string(l.Category),
		Mood:       string(l.Mood),
		Tags:       l.Tags,
		IsFavorite: l.IsFavorite,
		CreatedAt:  l.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map keyed by the field names used in
// the index mapping.
func (d *LetterDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"title":       d.Title,
		"content":     d.Content,
		"recipient":   d.Recipient,
		"author":      d.Author,
		"category":    d.Category,
		"mood":        d.Mood,
		"is_favorite": d.IsFavorite,
		"created_at":  d.CreatedAt,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}
