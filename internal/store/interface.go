// Package store defines the persistence interface for the love letters server.
package store

import (
	"context"
	"time"

	"github.com/loveletters/loveletters-server/internal/domain"
)

// LetterStore defines every persistence operation on the letter collection.
//
// Absence is always signalled with ErrLetterNotFound, invalid enum values
// with ErrInvalidInput, and anything else is a storage failure.
type LetterStore interface {
	// ListLetters returns the letters matching every active filter, newest
	// first. Letters created at the same instant are ordered newest insert first.
	ListLetters(ctx context.Context, filter ListFilter) ([]*domain.Letter, error)

	// GetLetter returns the letter with the given ID.
	GetLetter(ctx context.Context, id string) (*domain.Letter, error)

	// CreateLetter inserts a new letter. The caller assigns the ID and timestamps.
	CreateLetter(ctx context.Context, letter *domain.Letter) error

	// UpdateLetter merges the patch over the stored letter and stamps
	// UpdatedAt with max(now, previous UpdatedAt).
	UpdateLetter(ctx context.Context, id string, patch domain.LetterPatch, now time.Time) (*domain.Letter, error)

	// ToggleFavorite flips IsFavorite and stamps UpdatedAt like UpdateLetter.
	ToggleFavorite(ctx context.Context, id string, now time.Time) (*domain.Letter, error)

	// DeleteLetter removes the letter and returns it as it was before deletion.
	DeleteLetter(ctx context.Context, id string) (*domain.Letter, error)

	// LetterStats aggregates the whole collection. ThisMonth is evaluated
	// against now's calendar month in now's location.
	LetterStats(ctx context.Context, now time.Time) (*domain.LetterStats, error)

	// ImportLetter inserts a letter keeping its ID and timestamps. It reports
	// false without error when a letter with that ID already exists.
	ImportLetter(ctx context.Context, letter *domain.Letter) (bool, error)

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
