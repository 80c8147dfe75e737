package fetch

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"bskybots/internal/model"
)

var kaggleBase = "https://www.kaggle.com"

// KaggleDataset is the movie-of-the-day dataset slug: one CSV per calendar
// day, grouped into month directories.
const KaggleDataset = "abusayed0206/movie-of-the-day"

// TMDBPosterBase prefixes the poster_path column to form a full image URL.
const TMDBPosterBase = "https://image.tmdb.org/t/p/original"

var monthDirs = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// EnsureDataset makes the movie dataset available under dir, downloading
// and unpacking the Kaggle archive when no month directory is present.
// Credentials are optional; without them the download is unauthenticated
// and may fail for private datasets.
func EnsureDataset(dir, username, key string) error {
	for _, month := range monthDirs {
		if fi, err := os.Stat(filepath.Join(dir, month)); err == nil && fi.IsDir() {
			log.Printf("dataset already present at %s", dir)
			return nil
		}
	}

	url := fmt.Sprintf("%s/api/v1/datasets/download/%s", kaggleBase, KaggleDataset)
	log.Printf("downloading movie dataset from %s", url)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if username != "" && key != "" {
		req.SetBasicAuth(username, key)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download dataset: status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read dataset archive: %w", err)
	}
	log.Printf("downloaded dataset archive: %d bytes", len(data))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	zipPath := filepath.Join(dir, "dataset.zip")
	if err := os.WriteFile(zipPath, data, 0o644); err != nil {
		return fmt.Errorf("save dataset archive: %w", err)
	}
	defer os.Remove(zipPath)
	if err := unzipAll(zipPath, dir); err != nil {
		return err
	}
	log.Printf("dataset extracted to %s", dir)
	return nil
}

func unzipAll(zipPath, dir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open dataset archive: %w", err)
	}
	defer r.Close()
	for _, f := range r.File {
		dest := filepath.Join(dir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes %s", f.Name, dir)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s in archive: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// MoviesForDay reads the CSV for the month and day of t. Column order in
// the dataset is not fixed, so fields are resolved through the header row.
func MoviesForDay(dir string, t time.Time) ([]model.Movie, error) {
	month := strings.ToLower(t.Format("January"))
	day := t.Format("02")
	path := filepath.Join(dir, month, day+".csv")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open day file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var movies []model.Movie
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		popularity, _ := strconv.ParseFloat(field(row, "popularity"), 64)
		movies = append(movies, model.Movie{
			Title:       field(row, "title"),
			ReleaseDate: field(row, "release_date"),
			Tagline:     field(row, "tagline"),
			Genres:      field(row, "genres"),
			PosterPath:  field(row, "poster_path"),
			Popularity:  popularity,
		})
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("no movies in %s", path)
	}
	log.Printf("found %d movies for %s %s", len(movies), month, day)
	return movies, nil
}

// SelectByTime picks up to four movies: candidates need both a poster and a
// tagline, the top eight by popularity form the day's pool, and the hour of
// t decides the half. Morning runs post the top four, afternoon runs the
// next four.
func SelectByTime(movies []model.Movie, t time.Time) ([]model.Movie, error) {
	var candidates []model.Movie
	for _, m := range movies {
		if m.PosterPath != "" && m.Tagline != "" {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no movies with both poster and tagline")
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Popularity > candidates[j].Popularity
	})
	if len(candidates) > 8 {
		candidates = candidates[:8]
	}

	lo, hi := 0, 4
	if t.Hour() >= 12 {
		lo, hi = 4, 8
	}
	if lo > len(candidates) {
		lo = len(candidates)
	}
	if hi > len(candidates) {
		hi = len(candidates)
	}
	selected := candidates[lo:hi]
	if len(selected) == 0 {
		return nil, fmt.Errorf("no movies left for this half of the day")
	}
	return selected, nil
}

// PosterURL builds the full TMDB image URL for a dataset poster path.
func PosterURL(posterPath string) string {
	return TMDBPosterBase + posterPath
}
