package domain

// CategoryInfo is the display entry for a category.
type CategoryInfo struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
	Emoji string   `json:"emoji"`
}

// MoodInfo is the display entry for a mood, with the theme colour the
// client renders it in.
type MoodInfo struct {
	Value Mood   `json:"value"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// Author is one of the two preset users. Authors are product content,
// not accounts.
type Author struct {
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Theme       string `json:"theme"`
	Personality string `json:"personality"`
	Route       string `json:"route"`
}

var categoryCatalog = map[Category]CategoryInfo{
	CategoryAnniversary: {CategoryAnniversary, "Aniversario", "💕"},
	CategoryBirthday:    {CategoryBirthday, "Cumpleaños", "🎂"},
	CategoryApology:     {CategoryApology, "Disculpa", "🙏"},
	CategoryMissingYou:  {CategoryMissingYou, "Te extraño", "💭"},
	CategoryGoodMorning: {CategoryGoodMorning, "Buenos días", "🌅"},
	CategoryGoodNight:   {CategoryGoodNight, "Buenas noches", "🌙"},
	CategoryJustBecause: {CategoryJustBecause, "Sin razón especial", "💝"},
	CategorySpecialDate: {CategorySpecialDate, "Fecha especial", "⭐"},
	CategorySurprise:    {CategorySurprise, "Sorpresa", "🎁"},
}

var moodCatalog = map[Mood]MoodInfo{
	MoodRomantic:   {MoodRomantic, "Romántico", "💖", "rose"},
	MoodPassionate: {MoodPassionate, "Apasionado", "🔥", "red"},
	MoodSweet:      {MoodSweet, "Dulce", "🍯", "pink"},
	MoodPlayful:    {MoodPlayful, "Juguetón", "😊", "orange"},
	MoodSerious:    {MoodSerious, "Serio", "💙", "blue"},
	MoodNostalgic:  {MoodNostalgic, "Nostálgico", "🌸", "purple"},
}

// Info returns the display entry for c.
func (c Category) Info() CategoryInfo {
	if info, ok := categoryCatalog[c]; ok {
		return info
	}
	return CategoryInfo{Value: c, Label: string(c)}
}

// DisplayName returns the emoji-prefixed label, e.g. "🎂 Cumpleaños".
func (c Category) DisplayName() string {
	info := c.Info()
	if info.Emoji == "" {
		return info.Label
	}
	return info.Emoji + " " + info.Label
}

// Info returns the display entry for m.
func (m Mood) Info() MoodInfo {
	if info, ok := moodCatalog[m]; ok {
		return info
	}
	return MoodInfo{Value: m, Label: string(m), Color: "gray"}
}

// DisplayName returns the emoji-prefixed label, e.g. "🍯 Dulce".
func (m Mood) DisplayName() string {
	info := m.Info()
	if info.Emoji == "" {
		return info.Label
	}
	return info.Emoji + " " + info.Label
}

// CategoryCatalog returns the display entries for every category in order.
func CategoryCatalog() []CategoryInfo {
	all := AllCategories()
	out := make([]CategoryInfo, 0, len(all))
	for _, c := range all {
		out = append(out, c.Info())
	}
	return out
}

// MoodCatalog returns the display entries for every mood in order.
func MoodCatalog() []MoodInfo {
	all := AllMoods()
	out := make([]MoodInfo, 0, len(all))
	for _, m := range all {
		out = append(out, m.Info())
	}
	return out
}

// PresetAuthors returns the two users the app is written for.
func PresetAuthors() []Author {
	return []Author{
		{
			Name:        "Pollito",
			Emoji:       "🐥",
			Theme:       "cinnamoroll",
			Personality: "Enojona, dormilona y adorable",
			Route:       "/pollito",
		},
		{
			Name:        "Princesita",
			Emoji:       "👸",
			Theme:       "spiderman",
			Personality: "Bromitas, muerde y cariñoso",
			Route:       "/princesita",
		},
	}
}
