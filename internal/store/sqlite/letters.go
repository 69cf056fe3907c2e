package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loveletters/loveletters-server/internal/domain"
	"github.com/loveletters/loveletters-server/internal/normalize"
	"github.com/loveletters/loveletters-server/internal/store"
)

// letterColumns is the ordered list of columns selected in letter queries.
// Must match the scan order in scanLetter.
const letterColumns = `id, title, content, recipient, author, category, mood, tags, is_favorite, created_at, updated_at`

// letterOrder sorts newest first; seq breaks ties between equal timestamps.
const letterOrder = ` ORDER BY created_at DESC, seq DESC`

// scanLetter scans a sql.Row (or sql.Rows via its Scan method) into a domain.Letter.
func scanLetter(scanner interface{ Scan(dest ...any) error }) (*domain.Letter, error) {
	var l domain.Letter

	var (
		category   string
		mood       string
		tagsJSON   string
		isFavorite int
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&l.ID,
		&l.Title,
		&l.Content,
		&l.Recipient,
		&l.Author,
		&category,
		&mood,
		&tagsJSON,
		&isFavorite,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Category = domain.Category(category)
	l.Mood = domain.Mood(mood)
	l.IsFavorite = isFavorite != 0

	l.Tags = []string{}
	if err := json.Unmarshal([]byte(tagsJSON), &l.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of letter %s: %w", l.ID, err)
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}

	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// marshalTags normalizes and encodes tags as a JSON array.
func marshalTags(tags []string) (string, error) {
	b, err := json.Marshal(normalize.Tags(tags))
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// checkEnums rejects values the schema's CHECK constraints would refuse,
// so callers get ErrInvalidInput instead of a constraint failure.
func checkEnums(category *domain.Category, mood *domain.Mood) error {
	if category != nil && !category.Valid() {
		return store.ErrInvalidInput.WithMessage(fmt.Sprintf("invalid category %q", *category))
	}
	if mood != nil && !mood.Valid() {
		return store.ErrInvalidInput.WithMessage(fmt.Sprintf("invalid mood %q", *mood))
	}
	return nil
}

// ListLetters returns every letter matching all active filters, newest first.
func (s *Store) ListLetters(ctx context.Context, filter store.ListFilter) ([]*domain.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters`
	var args []any
	if !filter.IsZero() {
		var where []string
		where, args = buildLetterWhere(filter)
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += letterOrder

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list letters: %w", err)
	}
	defer rows.Close()

	letters := []*domain.Letter{}
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		letters = append(letters, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return letters, nil
}

// buildLetterWhere turns the active filters into AND-ed SQL predicates.
// Text matching folds both sides with fold() and uses instr, so LIKE
// wildcards in user input are matched literally.
func buildLetterWhere(f store.ListFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)

	if f.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, string(f.Category))
	}
	if f.Mood != "" {
		where = append(where, `mood = ?`)
		args = append(args, string(f.Mood))
	}
	if f.IsFavorite != nil {
		where = append(where, `is_favorite = ?`)
		args = append(args, boolInt(*f.IsFavorite))
	}
	if f.Recipient != "" {
		where = append(where, `instr(fold(recipient), ?) > 0`)
		args = append(args, normalize.Fold(f.Recipient))
	}
	if f.Author != "" {
		where = append(where, `fold(author) = ?`)
		args = append(args, normalize.Fold(f.Author))
	}
	if f.Search != "" {
		term := normalize.Fold(f.Search)
		where = append(where, `(
			instr(fold(title), ?) > 0
			OR instr(fold(content), ?) > 0
			OR instr(fold(recipient), ?) > 0
			OR EXISTS (SELECT 1 FROM json_each(letters.tags) WHERE instr(fold(json_each.value), ?) > 0)
		)`)
		args = append(args, term, term, term, term)
	}
	if f.CreatedFrom != nil {
		where = append(where, `created_at >= ?`)
		args = append(args, formatTime(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		where = append(where, `created_at <= ?`)
		args = append(args, formatTime(*f.CreatedTo))
	}

	return where, args
}

// GetLetter retrieves a letter by its ID.
// Returns store.ErrLetterNotFound if the letter does not exist.
func (s *Store) GetLetter(ctx context.Context, letterID string) (*domain.Letter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+letterColumns+` FROM letters WHERE id = ?`, letterID)

	l, err := scanLetter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLetterNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// CreateLetter inserts a new letter.
// Returns store.ErrAlreadyExists on a duplicate ID.
func (s *Store) CreateLetter(ctx context.Context, l *domain.Letter) error {
	if err := checkEnums(&l.Category, &l.Mood); err != nil {
		return err
	}

	tags, err := marshalTags(l.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO letters (
			id, title, content, recipient, author, category, mood,
			tags, is_favorite, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.Title,
		l.Content,
		l.Recipient,
		l.Author,
		string(l.Category),
		string(l.Mood),
		tags,
		boolInt(l.IsFavorite),
		formatTime(l.CreatedAt),
		formatTime(l.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithMessage("letter already exists").WithCause(err)
		}
		return fmt.Errorf("insert letter: %w", err)
	}
	l.Tags = normalize.Tags(l.Tags)
	return nil
}

// ImportLetter inserts a letter with its own ID and timestamps.
// Letters whose ID already exists are skipped and reported as not inserted.
func (s *Store) ImportLetter(ctx context.Context, l *domain.Letter) (bool, error) {
	if err := checkEnums(&l.Category, &l.Mood); err != nil {
		return false, err
	}

	tags, err := marshalTags(l.Tags)
	if err != nil {
		return false, err
	}

	updatedAt := l.UpdatedAt
	if updatedAt.Before(l.CreatedAt) {
		updatedAt = l.CreatedAt
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO letters (
			id, title, content, recipient, author, category, mood,
			tags, is_favorite, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		l.ID,
		l.Title,
		l.Content,
		l.Recipient,
		l.Author,
		string(l.Category),
		string(l.Mood),
		tags,
		boolInt(l.IsFavorite),
		formatTime(l.CreatedAt),
		formatTime(updatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("import letter %s: %w", l.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateLetter merges the supplied fields over the stored letter in a
// single statement, so concurrent updates to different fields are not lost.
// Returns store.ErrLetterNotFound if the letter does not exist.
func (s *Store) UpdateLetter(ctx context.Context, letterID string, patch domain.LetterPatch, now time.Time) (*domain.Letter, error) {
	if err := checkEnums(patch.Category, patch.Mood); err != nil {
		return nil, err
	}

	var tags sql.NullString
	if patch.Tags != nil {
		encoded, err := marshalTags(*patch.Tags)
		if err != nil {
			return nil, err
		}
		tags = sql.NullString{String: encoded, Valid: true}
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE letters SET
			title      = COALESCE(?, title),
			content    = COALESCE(?, content),
			recipient  = COALESCE(?, recipient),
			author     = COALESCE(?, author),
			category   = COALESCE(?, category),
			mood       = COALESCE(?, mood),
			tags       = COALESCE(?, tags),
			updated_at = MAX(?, updated_at)
		WHERE id = ?
		RETURNING `+letterColumns,
		nullableString(patch.Title),
		nullableString(patch.Content),
		nullableString(patch.Recipient),
		nullableString(patch.Author),
		nullableString((*string)(patch.Category)),
		nullableString((*string)(patch.Mood)),
		tags,
		formatTime(now),
		letterID,
	)

	l, err := scanLetter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLetterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update letter %s: %w", letterID, err)
	}
	return l, nil
}

// ToggleFavorite flips the favorite flag and refreshes the update time.
// Returns store.ErrLetterNotFound if the letter does not exist.
func (s *Store) ToggleFavorite(ctx context.Context, letterID string, now time.Time) (*domain.Letter, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE letters SET
			is_favorite = 1 - is_favorite,
			updated_at  = MAX(?, updated_at)
		WHERE id = ?
		RETURNING `+letterColumns,
		formatTime(now),
		letterID,
	)

	l, err := scanLetter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLetterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("toggle favorite %s: %w", letterID, err)
	}
	return l, nil
}

// DeleteLetter hard-deletes a letter and returns the removed record.
// Returns store.ErrLetterNotFound if the letter does not exist.
func (s *Store) DeleteLetter(ctx context.Context, letterID string) (*domain.Letter, error) {
	row := s.db.QueryRowContext(ctx,
		`DELETE FROM letters WHERE id = ? RETURNING `+letterColumns, letterID)

	l, err := scanLetter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLetterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete letter %s: %w", letterID, err)
	}
	return l, nil
}

// LetterStats aggregates the collection inside one read transaction so the
// totals and frequency tables describe the same snapshot.
func (s *Store) LetterStats(ctx context.Context, now time.Time) (*domain.LetterStats, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	monthStart, nextMonth := domain.MonthBounds(now)
	stats := domain.NewLetterStats()

	err = tx.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(is_favorite), 0),
			COALESCE(SUM(created_at >= ? AND created_at < ?), 0)
		FROM letters`,
		formatTime(monthStart),
		formatTime(nextMonth),
	).Scan(&stats.Total, &stats.Favorites, &stats.ThisMonth)
	if err != nil {
		return nil, fmt.Errorf("count letters: %w", err)
	}

	groups := []struct {
		column string
		into   map[string]int
	}{
		{"category", stats.ByCategory},
		{"mood", stats.ByMood},
		{"recipient", stats.ByRecipient},
	}
	for _, g := range groups {
		if err := countBy(ctx, tx, g.column, g.into); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// countBy fills into with the row count per distinct value of column.
// column is always one of the fixed names above, never user input.
func countBy(ctx context.Context, tx *sql.Tx, column string, into map[string]int) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) FROM letters GROUP BY `+column)
	if err != nil {
		return fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

// nullableString returns a sql.NullString from a *string.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
