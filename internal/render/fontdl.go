package render

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultFontURL serves a zip containing a Bangla-capable TTF.
const DefaultFontURL = "https://lipighor.com/download/ShohidShafkatSamir.zip"

var assetHTTPClient = &http.Client{Timeout: 60 * time.Second}

// EnsureFont returns the path of a TTF under dir, downloading and unpacking
// the zip at url on first use. Files under a Unicode/ folder win over other
// entries, matching how the common Bangla font archives are laid out.
func EnsureFont(dir, url string) (string, error) {
	if path := findTTF(dir); path != "" {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create font dir: %w", err)
	}

	log.Printf("downloading font archive from %s", url)
	resp, err := assetHTTPClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("download font: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download font: status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read font archive: %w", err)
	}

	zipPath := filepath.Join(dir, "font.zip")
	if err := os.WriteFile(zipPath, data, 0o644); err != nil {
		return "", fmt.Errorf("save font archive: %w", err)
	}
	if err := unzipTTFs(zipPath, dir); err != nil {
		return "", err
	}
	if path := findTTF(dir); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("font archive at %s contained no ttf", url)
}

// unzipTTFs extracts the TTF entries of the archive into dir, flattening
// paths. Unicode/ entries are extracted last so they overwrite legacy
// encodings of the same face.
func unzipTTFs(zipPath, dir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open font archive: %w", err)
	}
	defer r.Close()

	var plain, unicode []*zip.File
	for _, f := range r.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".ttf") {
			continue
		}
		if strings.Contains(strings.ToLower(f.Name), "unicode/") {
			unicode = append(unicode, f)
		} else {
			plain = append(plain, f)
		}
	}
	for _, f := range append(plain, unicode...) {
		if err := extractFlat(f, dir); err != nil {
			return err
		}
	}
	return nil
}

func extractFlat(f *zip.File, dir string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s in archive: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	dest := filepath.Join(dir, filepath.Base(f.Name))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func findTTF(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".ttf") {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}
