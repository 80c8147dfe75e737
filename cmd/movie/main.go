// Command movie posts four movie posters for today's calendar date. The
// dataset holds one CSV per day; the top eight by popularity form the day's
// pool and the run's half depends on the hour, so a morning and an
// afternoon run together cover all eight.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"
	"unicode"

	"bskybots/internal/bsky"
	"bskybots/internal/caption"
	"bskybots/internal/config"
	"bskybots/internal/fetch"
	"bskybots/internal/imaging"
	"bskybots/internal/model"
)

func main() {
	log.SetFlags(0)
	config.Load()

	now := time.Now()
	datasetDir := envOr("MOVIE_DATASET_DIR", "dataset_movies")
	must(fetch.EnsureDataset(datasetDir,
		envOr("KAGGLE_USERNAME", os.Getenv("KAGGLE_USER")),
		envOr("KAGGLE_KEY", os.Getenv("KAGGLE_API_KEY"))))

	movies, err := fetch.MoviesForDay(datasetDir, now)
	must(err)
	selected, err := fetch.SelectByTime(movies, now)
	must(err)
	for i, m := range selected {
		log.Printf("  %d. %s (%s)", i+1, m.Title, m.Year())
	}

	outDir, err := config.OutputDir()
	must(err)

	var posters [][]byte
	var posted []model.Movie
	for i, m := range selected {
		data, err := downloadPoster(m)
		if err != nil {
			log.Printf("warning: skipping poster for %s: %v", m.Title, err)
			continue
		}
		path := config.OutputPath(outDir, fmt.Sprintf("poster_%d", i+1), ".jpg")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Printf("warning: could not save %s: %v", path, err)
		} else {
			log.Printf("poster saved: %s", path)
		}
		posters = append(posters, data)
		posted = append(posted, m)
	}
	if len(posters) == 0 {
		log.Fatal("could not download any posters")
	}

	text, facets := buildCaption(posted)

	if !config.PostingEnabled() {
		log.Print("POST_TO_BLUESKY not set to true, skipping post")
		log.Printf("would post %d posters:\n%s", len(posters), text)
		os.Exit(0)
	}

	creds, err := config.BlueskyCredentials()
	must(err)

	ctx := context.Background()
	client := bsky.NewClient(nil)
	must(client.Login(ctx, creds.Handle, creds.Password))
	log.Printf("logged in as @%s", client.Handle())

	var embeds []bsky.Image
	for i, data := range posters {
		log.Printf("uploading poster %d/%d", i+1, len(posters))
		blob, err := client.UploadBlob(ctx, data)
		must(err)
		embeds = append(embeds, bsky.Image{
			Alt:  "Movie poster for " + posted[i].Title,
			Blob: blob,
		})
	}

	ref, err := client.CreatePost(ctx, bsky.Post{Text: text, Facets: facets, Images: embeds})
	must(err)
	log.Printf("posted: %s", ref.URI)
}

func downloadPoster(m model.Movie) ([]byte, error) {
	data, err := fetch.DownloadImage(fetch.PosterURL(m.PosterPath), false, nil)
	if err != nil {
		return nil, err
	}
	// A poster that cannot be brought under the limit is skipped rather
	// than risking a failed upload.
	fitted, err := imaging.FitUnder(data, imaging.MaxBlobSize)
	if err != nil {
		return nil, err
	}
	return fitted, nil
}

// buildCaption lists the movies and hashtags their titles and genres.
// Hashtags are deduplicated case-insensitively; on overflow the builder
// drops them from the end, so the generic tags go first.
func buildCaption(movies []model.Movie) (string, []caption.Facet) {
	lines := []string{"Movies of the day (4/8)"}
	for _, m := range movies {
		if year := m.Year(); year != "" {
			lines = append(lines, fmt.Sprintf("🎬 %s(%s)", m.Title, year))
		} else {
			lines = append(lines, "🎬 "+m.Title)
		}
	}
	lines = append(lines, "\n© TMDB")

	var tags []string
	for _, m := range movies {
		if tag := alnumOnly(m.Title); tag != "" {
			tags = append(tags, tag)
		}
	}
	genres := map[string]bool{}
	for _, m := range movies {
		for _, g := range strings.Split(m.Genres, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genres[g] = true
			}
		}
	}
	sorted := make([]string, 0, len(genres))
	for g := range genres {
		sorted = append(sorted, g)
	}
	sort.Strings(sorted)
	for _, g := range sorted {
		tags = append(tags, strings.NewReplacer(" ", "", "-", "").Replace(g))
	}
	tags = append(tags, "Movie", "MovieOfTheDay", "OnThisDay", "TMDB")

	b := caption.NewBuilder(caption.DefaultLimit)
	b.Text(strings.Join(lines, "\n") + "\n\n")
	seen := map[string]bool{}
	for _, tag := range tags {
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		b.Tag(tag)
	}
	return b.Build()
}

func alnumOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
