package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearCredEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BLUESKY_HANDLE", "BLUESKY_PASSWORD", "BSKY_USERNAME", "BSKY_APP_PASSWORD"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestBlueskyCredentials_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantHandle string
		wantPass   string
		wantErr    bool
	}{
		{
			name:    "nothing set",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:       "primary names",
			env:        map[string]string{"BLUESKY_HANDLE": "alice.bsky.social", "BLUESKY_PASSWORD": "secret"},
			wantHandle: "alice.bsky.social",
			wantPass:   "secret",
		},
		{
			name:       "legacy names",
			env:        map[string]string{"BSKY_USERNAME": "bob.bsky.social", "BSKY_APP_PASSWORD": "hunter2"},
			wantHandle: "bob.bsky.social",
			wantPass:   "hunter2",
		},
		{
			name: "primary wins over legacy",
			env: map[string]string{
				"BLUESKY_HANDLE": "primary", "BSKY_USERNAME": "legacy",
				"BLUESKY_PASSWORD": "p1", "BSKY_APP_PASSWORD": "p2",
			},
			wantHandle: "primary",
			wantPass:   "p1",
		},
		{
			name:    "handle without password",
			env:     map[string]string{"BLUESKY_HANDLE": "alice"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			c, err := BlueskyCredentials()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if c.Handle != tt.wantHandle || c.Password != tt.wantPass {
				t.Errorf("got %+v, want handle=%q password=%q", c, tt.wantHandle, tt.wantPass)
			}
		})
	}
}

func TestPostingEnabled(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"", false},
		{"false", false},
		{"1", false},
		{"true", true},
		{"TRUE", true},
		{"True", true},
	}
	for _, tt := range tests {
		t.Run("val="+tt.val, func(t *testing.T) {
			t.Setenv("POST_TO_BLUESKY", tt.val)
			if got := PostingEnabled(); got != tt.want {
				t.Errorf("PostingEnabled() with %q = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Setenv("OUTPUT_DIR", filepath.Join(t.TempDir(), "out"))
	dir, err := OutputDir()
	if err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("output dir not created: %v", err)
	}

	p := OutputPath(dir, "bagdhara", ".png")
	base := filepath.Base(p)
	if !strings.HasPrefix(base, "bagdhara_") || !strings.HasSuffix(base, ".png") {
		t.Errorf("unexpected artifact name: %s", base)
	}
}

func TestEnvOr(t *testing.T) {
	const key = "TEST_ENVVAR_BSKYBOTS_XYZ"

	os.Unsetenv(key)
	if got := envOr(key, "fallback"); got != "fallback" {
		t.Errorf("envOr unset = %q, want %q", got, "fallback")
	}

	t.Setenv(key, "custom")
	if got := envOr(key, "fallback"); got != "custom" {
		t.Errorf("envOr set = %q, want %q", got, "custom")
	}
}
