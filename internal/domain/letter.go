package domain

import "time"

// Category classifies the occasion a letter was written for.
type Category string

// Letter categories.
const (
	CategoryAnniversary Category = "anniversary"
	CategoryBirthday    Category = "birthday"
	CategoryApology     Category = "apology"
	CategoryMissingYou  Category = "missing_you"
	CategoryGoodMorning Category = "good_morning"
	CategoryGoodNight   Category = "good_night"
	CategoryJustBecause Category = "just_because"
	CategorySpecialDate Category = "special_date"
	CategorySurprise    Category = "surprise"
)

// AllCategories returns every category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryAnniversary,
		CategoryBirthday,
		CategoryApology,
		CategoryMissingYou,
		CategoryGoodMorning,
		CategoryGoodNight,
		CategoryJustBecause,
		CategorySpecialDate,
		CategorySurprise,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryAnniversary, CategoryBirthday, CategoryApology, CategoryMissingYou,
		CategoryGoodMorning, CategoryGoodNight, CategoryJustBecause, CategorySpecialDate,
		CategorySurprise:
		return true
	}
	return false
}

// Mood describes the emotional tone of a letter.
type Mood string

// Letter moods.
const (
	MoodRomantic   Mood = "romantic"
	MoodPassionate Mood = "passionate"
	MoodSweet      Mood = "sweet"
	MoodPlayful    Mood = "playful"
	MoodSerious    Mood = "serious"
	MoodNostalgic  Mood = "nostalgic"
)

// AllMoods returns every mood in display order.
func AllMoods() []Mood {
	return []Mood{MoodRomantic, MoodPassionate, MoodSweet, MoodPlayful, MoodSerious, MoodNostalgic}
}

// Valid reports whether m is a known mood.
func (m Mood) Valid() bool {
	switch m {
	case MoodRomantic, MoodPassionate, MoodSweet, MoodPlayful, MoodSerious, MoodNostalgic:
		return true
	}
	return false
}

// Letter is a journal entry written by one user to another.
// ID and CreatedAt never change after creation.
type Letter struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Recipient  string    `json:"recipient"`
	Author     string    `json:"author"`
	Category   Category  `json:"category"`
	Mood       Mood      `json:"mood"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Touch moves UpdatedAt forward to now. A clock that went backwards never
// moves it back.
func (l *Letter) Touch(now time.Time) {
	if now.After(l.UpdatedAt) {
		l.UpdatedAt = now
	}
}

// LetterPatch carries the fields supplied to a partial update.
// Nil fields are left untouched.
type LetterPatch struct {
	Title     *string
	Content   *string
	Recipient *string
	Author    *string
	Category  *Category
	Mood      *Mood
	Tags      *[]string
}

// IsEmpty reports whether the patch changes nothing but the update time.
func (p LetterPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Recipient == nil && p.Author == nil &&
		p.Category == nil && p.Mood == nil && p.Tags == nil
}

// LetterStats aggregates the collection. Each frequency map holds only keys
// that occur, and each letter is counted once per map.
type LetterStats struct {
	Total       int            `json:"total"`
	Favorites   int            `json:"favorites"`
	ThisMonth   int            `json:"thisMonth"`
	ByCategory  map[string]int `json:"byCategory"`
	ByMood      map[string]int `json:"byMood"`
	ByRecipient map[string]int `json:"byRecipient"`
}

// NewLetterStats returns zeroed stats with non-nil maps.
func NewLetterStats() *LetterStats {
	return &LetterStats{
		ByCategory:  make(map[string]int),
		ByMood:      make(map[string]int),
		ByRecipient: make(map[string]int),
	}
}

// MonthBounds returns the first instant of now's calendar month and of the
// following month, both in now's location.
func MonthBounds(now time.Time) (start, next time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}
