// Package main imports letters into the database.
//
// It accepts a legacy letters file (a JSON array of letters), an export
// document ({exportedAt, count, letters}) or the enveloped response of
// GET /api/letters/export. With -samples it inserts a few sample letters.
// Letters whose ID already exists are skipped, so re-running is safe.
//
// Usage:
//
//	go run ./cmd/seed -file letters.json
//	go run ./cmd/seed -samples -db-path ./data/letters.db
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/loveletters/loveletters-server/internal/config"
	"github.com/loveletters/loveletters-server/internal/domain"
	"github.com/loveletters/loveletters-server/internal/logger"
	"github.com/loveletters/loveletters-server/internal/service"
	"github.com/loveletters/loveletters-server/internal/store/sqlite"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", "", "Letters file to import (JSON array or export document)")
	samples := fs.Bool("samples", false, "Insert the sample letters")
	dbPath := fs.String("db-path", "", "SQLite database path (default: DB_PATH or ./data/letters.db)")
	actor := fs.String("author", "seed", "Name logged as the acting author")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" && !*samples {
		fs.Usage()
		return errors.New("nothing to import: pass -file or -samples")
	}

	cfgArgs := []string{"-search", "false", "-rate-limit", "false"}
	if *dbPath != "" {
		cfgArgs = append(cfgArgs, "-db-path", *dbPath)
	}
	cfg, err := config.Load(cfgArgs)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})
	defer log.Close()

	st, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		return err
	}
	defer st.Close()

	var letters []*domain.Letter
	if *file != "" {
		data, err := os.ReadFile(*file) //#nosec G304 -- import path comes from the operator
		if err != nil {
			return fmt.Errorf("read %s: %w", *file, err)
		}
		fromFile, err := decodeLetters(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", *file, err)
		}
		letters = append(letters, fromFile...)
	}
	if *samples {
		letters = append(letters, sampleLetters(time.Now().UTC())...)
	}

	// The server rebuilds its search index from the store at startup.
	letterService := service.NewLetterService(st, nil, log.Logger)
	result, err := letterService.Import(ctx, *actor, letters)
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Printf("Imported %d, skipped %d existing, rejected %d\n", result.Imported, result.Skipped, len(result.Invalid))
	for _, reject := range result.Invalid {
		fmt.Printf("  #%d %s: %s\n", reject.Index, reject.ID, reject.Reason)
	}
	return nil
}

// decodeLetters reads a JSON array of letters, an export document, or an
// export document wrapped in the API response envelope.
func decodeLetters(data []byte) ([]*domain.Letter, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}

	if data[0] == '[' {
		var letters []*domain.Letter
		if err := json.Unmarshal(data, &letters); err != nil {
			return nil, err
		}
		return letters, nil
	}

	var doc struct {
		Letters []*domain.Letter `json:"letters"`
		Data    *struct {
			Letters []*domain.Letter `json:"letters"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	switch {
	case doc.Letters != nil:
		return doc.Letters, nil
	case doc.Data != nil && doc.Data.Letters != nil:
		return doc.Data.Letters, nil
	default:
		return nil, errors.New("no letters found in document")
	}
}

// sampleLetters returns fixed-ID letters spread over the last few weeks.
func sampleLetters(now time.Time) []*domain.Letter {
	day := 24 * time.Hour
	at := func(ago time.Duration) time.Time { return now.Add(-ago).Truncate(time.Minute) }

	letters := []*domain.Letter{
		{
			ID:        "ltr-sample-good-morning",
			Title:     "Buenos días, mi amor",
			Content:   "Despertar pensando en ti es la mejor forma de empezar el día.",
			Recipient: "Princesita",
			Author:    "Pollito",
			Category:  domain.CategoryGoodMorning,
			Mood:      domain.MoodSweet,
			Tags:      []string{"mañana", "amor"},
			CreatedAt: at(21 * day),
		},
		{
			ID:        "ltr-sample-missing-you",
			Title:     "Te extraño",
			Content:   "Cuento los días para volver a verte. Cada canción me recuerda a ti.",
			Recipient: "Pollito",
			Author:    "Princesita",
			Category:  domain.CategoryMissingYou,
			Mood:      domain.MoodNostalgic,
			Tags:      []string{"distancia"},
			CreatedAt: at(14 * day),
		},
		{
			ID:         "ltr-sample-anniversary",
			Title:      "Feliz aniversario",
			Content:    "Un año más a tu lado y sigo enamorándome de ti cada día.",
			Recipient:  "Princesita",
			Author:     "Pollito",
			Category:   domain.CategoryAnniversary,
			Mood:       domain.MoodRomantic,
			Tags:       []string{"aniversario", "amor"},
			IsFavorite: true,
			CreatedAt:  at(7 * day),
		},
		{
			ID:        "ltr-sample-apology",
			Title:     "Lo siento",
			Content:   "Perdón por lo de ayer. Hablemos esta noche con calma.",
			Recipient: "Pollito",
			Author:    "Princesita",
			Category:  domain.CategoryApology,
			Mood:      domain.MoodSerious,
			CreatedAt: at(3 * day),
		},
		{
			ID:        "ltr-sample-good-night",
			Title:     "Dulces sueños",
			Content:   "Que descanses, mañana te espera un día increíble.",
			Recipient: "Princesita",
			Author:    "Pollito",
			Category:  domain.CategoryGoodNight,
			Mood:      domain.MoodPlayful,
			Tags:      []string{"noche"},
			CreatedAt: at(day),
		},
	}
	for _, l := range letters {
		l.UpdatedAt = l.CreatedAt
	}
	return letters
}
