// Command bagdhara posts a random Bangla idiom as a rendered card. The
// proverb list is resolved local-first: sqlite cache, then a JSON file,
// then the hosted list.
package main

import (
	"context"
	"fmt"
	"image/png"
	"log"
	"os"
	"strings"

	"bskybots/internal/bsky"
	"bskybots/internal/caption"
	"bskybots/internal/config"
	"bskybots/internal/fetch"
	"bskybots/internal/model"
	"bskybots/internal/render"
)

var hashtags = []string{"বাংলা", "বাগধারা", "BanglaBagdhara", "BanglaIdiom", "বাংলাভাষা", "Bengali"}

func main() {
	log.SetFlags(0)
	config.Load()

	ctx := context.Background()

	proverbs, err := fetch.Proverbs(ctx,
		envOr("PROVERB_DB", "files/bangla_bagdhara.sqlite"),
		envOr("PROVERB_JSON", "files/bangla_bagdhara.json"),
		envOr("PROVERB_URL", fetch.DefaultProverbURL))
	must(err)
	proverb, err := fetch.PickProverb(proverbs)
	must(err)
	log.Printf("selected: %s", proverb.Phrase)

	outDir, err := config.OutputDir()
	must(err)
	outPath := config.OutputPath(outDir, "bagdhara", ".png")

	must(renderCard(ctx, proverb, outPath))
	log.Printf("image saved: %s", outPath)

	text, facets := buildCaption(proverb)

	if !config.PostingEnabled() {
		log.Print("POST_TO_BLUESKY not set to true, skipping post")
		log.Printf("would post:\n%s", text)
		os.Exit(0)
	}

	creds, err := config.BlueskyCredentials()
	must(err)
	client := bsky.NewClient(nil)
	must(client.Login(ctx, creds.Handle, creds.Password))
	log.Printf("logged in as @%s", client.Handle())

	data, err := os.ReadFile(outPath)
	must(err)
	blob, err := client.UploadBlob(ctx, data)
	must(err)

	ref, err := client.CreatePost(ctx, bsky.Post{
		Text:   text,
		Facets: facets,
		Images: []bsky.Image{{
			Alt:  fmt.Sprintf("বাংলা বাগধারা: %s - %s", proverb.Phrase, proverb.Meaning),
			Blob: blob,
		}},
	})
	must(err)
	log.Printf("posted: %s", ref.URI)
}

func renderCard(ctx context.Context, proverb model.Proverb, outPath string) error {
	font := loadFont()
	profile := loadProfile(ctx)
	assets := render.LoadAssets(font, profile)

	lines := []render.Line{
		render.PlainLine("আজকের বাগধারা", render.Accent, 52, 52, 0, 0),
		render.PlainLine(proverb.Phrase, render.TextPrimary, 110, 30, 5, 50),
		render.PlainLine(proverb.Meaning, render.TextSecondary, 68, 24, 4, 35),
	}
	img, err := render.BagdharaCard.Compose(assets, lines)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func loadFont() *render.Font {
	fontPath, err := render.EnsureFont(envOr("FONT_DIR", "fonts"), envOr("FONT_URL", render.DefaultFontURL))
	if err != nil {
		log.Printf("font download failed: %v", err)
		return render.LoadFont()
	}
	return render.LoadFont(fontPath)
}

// loadProfile asks the public AppView for the poster's display name and
// avatar. Failures fall back to a bare handle so the card still renders.
func loadProfile(ctx context.Context) model.Profile {
	handle := envOr("BLUESKY_HANDLE", envOr("BSKY_USERNAME", "sayed.app"))
	if i := strings.Index(handle, "@"); i != -1 {
		handle = handle[:i]
	}
	profile, err := bsky.NewClient(nil).GetProfile(ctx, handle)
	if err != nil {
		log.Printf("could not fetch profile: %v", err)
		return model.Profile{Handle: handle, DisplayName: handle}
	}
	return profile
}

func buildCaption(proverb model.Proverb) (string, []caption.Facet) {
	b := caption.NewBuilder(caption.DefaultLimit)
	b.Text(fmt.Sprintf("আজকের বাগধারা: %s\n\nঅর্থ: %s\n\n", proverb.Phrase, proverb.Meaning))
	for _, tag := range hashtags {
		b.Tag(tag)
	}
	return b.Build()
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
