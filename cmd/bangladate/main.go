// Command bangladate posts today's date in the revised Bangladesh Bangla
// calendar, rendered as a card with the weekday and season highlighted.
package main

import (
	"context"
	"fmt"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"bskybots/internal/banglacal"
	"bskybots/internal/bsky"
	"bskybots/internal/caption"
	"bskybots/internal/config"
	"bskybots/internal/model"
	"bskybots/internal/render"
)

var hashtags = []string{"Bangladesh", "Bangla", "বাংলাদেশ", "বাংলা", "বাংলাতারিখ", "তারিখ", "date", "BanglaDate"}

func main() {
	log.SetFlags(0)
	config.Load()

	ctx := context.Background()
	date := banglacal.FromGregorian(time.Now())
	log.Printf("bangla date: %s %s %s, %s (%s)", date.Day, date.Month, date.Year, date.Weekday, date.Season)

	outDir, err := config.OutputDir()
	must(err)
	outPath := config.OutputPath(outDir, "bangla_date", ".png")

	dateText, err := renderCard(ctx, date, outPath)
	must(err)
	log.Printf("image saved: %s", outPath)

	text, facets := buildCaption(date, dateText)

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
			Alt:  "আজকের বাংলা তারিখ: " + dateText,
			Blob: blob,
		}},
	})
	must(err)
	log.Printf("posted: %s", ref.URI)
}

// renderCard draws the card and returns the plain-text form of its three
// content lines, reused for the caption and alt text.
func renderCard(ctx context.Context, date banglacal.Date, outPath string) (string, error) {
	font := loadFont()
	profile := loadProfile(ctx)
	assets := render.LoadAssets(font, profile)

	line1 := fmt.Sprintf("%s %s,", date.Day, date.Month)
	line2 := date.Year + " বঙ্গাব্দ"
	lines := []render.Line{
		render.PlainLine(line1, render.TextPrimary, 110, 110, 0, 0),
		render.PlainLine(line2, render.TextPrimary, 110, 110, 0, 0),
		{
			Spans: []render.Span{
				{Text: "বারঃ ", Color: render.TextSecondary},
				{Text: date.Weekday, Color: render.Accent},
				{Text: ", ", Color: render.TextSecondary},
				{Text: "ঋতুঃ ", Color: render.TextSecondary},
				{Text: date.Season, Color: render.Accent},
			},
			Size: 68, MinSize: 68, Step: 0, SpacingBefore: 30,
		},
	}

	img, err := render.BanglaDateCard.Compose(assets, lines)
	if err != nil {
		return "", err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", err
	}

	dateText := fmt.Sprintf("%s\n%s\nবারঃ %s, ঋতুঃ %s", line1, line2, date.Weekday, date.Season)
	return dateText, nil
}

func loadFont() *render.Font {
	fontPath, err := render.EnsureFont(envOr("FONT_DIR", "fonts"), envOr("FONT_URL", render.DefaultFontURL))
	if err != nil {
		log.Printf("font download failed: %v", err)
		return render.LoadFont()
	}
	return render.LoadFont(fontPath)
}

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

func buildCaption(date banglacal.Date, dateText string) (string, []caption.Facet) {
	b := caption.NewBuilder(caption.DefaultLimit)
	b.Text(fmt.Sprintf("আজ রোজ %s,\n%s\nএবং %sকাল\n\n", date.Weekday, dateText, date.Season))
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
