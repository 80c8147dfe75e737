// Package config loads credentials and run flags from the environment.
//
// A .env file in the working directory is honoured for local runs; in CI the
// variables are expected to be set already.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Credentials holds the Bluesky login pair.
type Credentials struct {
	Handle   string
	Password string
}

var ErrMissingCredentials = errors.New("bluesky credentials not set (BLUESKY_HANDLE/BLUESKY_PASSWORD or BSKY_USERNAME/BSKY_APP_PASSWORD)")

// Load reads a .env file when present. A missing file is not an error.
func Load() {
	_ = godotenv.Load()
}

// BlueskyCredentials resolves the handle/password pair through the
// historical fallback chain.
func BlueskyCredentials() (Credentials, error) {
	handle := envOr("BLUESKY_HANDLE", os.Getenv("BSKY_USERNAME"))
	password := envOr("BLUESKY_PASSWORD", os.Getenv("BSKY_APP_PASSWORD"))
	if handle == "" || password == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return Credentials{Handle: handle, Password: password}, nil
}

// PostingEnabled reports whether the publish step should actually run.
// Anything other than POST_TO_BLUESKY=true is a dry run.
func PostingEnabled() bool {
	return strings.EqualFold(os.Getenv("POST_TO_BLUESKY"), "true")
}

// OutputDir returns the artifact directory, creating it if needed.
func OutputDir() (string, error) {
	dir := envOr("OUTPUT_DIR", "output")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// OutputPath builds a timestamped artifact path inside the output directory,
// eg. output/bagdhara_20260830_120000.png.
func OutputPath(dir, prefix, ext string) string {
	ts := time.Now().Format("20060102_150405")
	return filepath.Join(dir, prefix+"_"+ts+ext)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
