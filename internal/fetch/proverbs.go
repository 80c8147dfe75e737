package fetch

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"

	_ "modernc.org/sqlite"

	"bskybots/internal/model"
)

// DefaultProverbURL is the hosted copy of the proverb list, used when no
// local cache or JSON file is present.
const DefaultProverbURL = "https://raw.githubusercontent.com/abusayed0206/bsky-autopost/main/files/bangla_bagdhara.json"

// Proverbs loads the proverb list, trying each source in order: the sqlite
// cache at dbPath, the JSON file at jsonPath, then the remote list at url.
// Sources that are absent or unreadable fall through to the next one.
func Proverbs(ctx context.Context, dbPath, jsonPath, url string) ([]model.Proverb, error) {
	if dbPath != "" {
		if proverbs, err := proverbsFromDB(ctx, dbPath); err == nil && len(proverbs) > 0 {
			log.Printf("loaded %d proverbs from cache %s", len(proverbs), dbPath)
			return proverbs, nil
		} else if err != nil {
			log.Printf("proverb cache %s unavailable: %v", dbPath, err)
		}
	}
	if jsonPath != "" {
		if data, err := os.ReadFile(jsonPath); err == nil {
			proverbs, err := decodeProverbs(data)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", jsonPath, err)
			}
			log.Printf("loaded %d proverbs from %s", len(proverbs), jsonPath)
			return proverbs, nil
		}
	}
	data, err := get(url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	proverbs, err := decodeProverbs(data)
	if err != nil {
		return nil, fmt.Errorf("parse proverb list from %s: %w", url, err)
	}
	log.Printf("loaded %d proverbs from %s", len(proverbs), url)
	return proverbs, nil
}

func decodeProverbs(data []byte) ([]model.Proverb, error) {
	var proverbs []model.Proverb
	if err := json.Unmarshal(data, &proverbs); err != nil {
		return nil, err
	}
	if len(proverbs) == 0 {
		return nil, fmt.Errorf("proverb list is empty")
	}
	return proverbs, nil
}

func proverbsFromDB(ctx context.Context, path string) ([]model.Proverb, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT phrase, meaning FROM proverbs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proverbs []model.Proverb
	for rows.Next() {
		var p model.Proverb
		if err := rows.Scan(&p.Phrase, &p.Meaning); err != nil {
			return nil, err
		}
		proverbs = append(proverbs, p)
	}
	return proverbs, rows.Err()
}

// PickProverb returns a uniformly random entry.
func PickProverb(proverbs []model.Proverb) (model.Proverb, error) {
	if len(proverbs) == 0 {
		return model.Proverb{}, fmt.Errorf("no proverbs to pick from")
	}
	return proverbs[rand.Intn(len(proverbs))], nil
}
