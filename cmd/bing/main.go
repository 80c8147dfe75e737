// Command bing posts the Bing wallpaper of the day for a random market.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"bskybots/internal/bsky"
	"bskybots/internal/caption"
	"bskybots/internal/config"
	"bskybots/internal/fetch"
	"bskybots/internal/imaging"
)

var hashtags = []string{"BingWallpaper", "DailyWallpaper", "Photography", "NaturePhotography", "Wallpaper"}

func main() {
	log.SetFlags(0)
	config.Load()

	region := fetch.RandomBingRegion()
	log.Printf("using region: %s", region)

	wallpaper, err := fetch.BingWallpaper(region)
	must(err)
	log.Printf("found image: %s (%s - %s)", wallpaper.URL, wallpaper.StartDate, wallpaper.EndDate)

	data, err := fetch.DownloadImage(wallpaper.URL, false, nil)
	must(err)
	log.Printf("downloaded image: %d bytes", len(data))

	fitted, err := imaging.FitUnder(data, imaging.MaxBlobSize)
	if errors.Is(err, imaging.ErrTooLarge) {
		log.Printf("warning: image still over the size limit at minimum quality, upload may fail")
	} else {
		must(err)
	}
	data = fitted

	b := caption.NewBuilder(caption.DefaultLimit)
	b.Text("🖼️ Bing Wallpaper of the Day\n\n")
	b.Text("📷 " + wallpaper.Copyright + "\n\n")
	b.Optional("🌍 Region: " + wallpaper.Region + "\n")
	for _, tag := range hashtags {
		b.Tag(tag)
	}
	text, facets := b.Build()

	if !config.PostingEnabled() {
		log.Print("POST_TO_BLUESKY not set to true, skipping post")
		log.Printf("would post:\n%s", text)
		os.Exit(0)
	}

	creds, err := config.BlueskyCredentials()
	must(err)

	ctx := context.Background()
	client := bsky.NewClient(nil)
	must(client.Login(ctx, creds.Handle, creds.Password))
	log.Printf("logged in as @%s", client.Handle())

	blob, err := client.UploadBlob(ctx, data)
	must(err)

	ref, err := client.CreatePost(ctx, bsky.Post{
		Text:   text,
		Facets: facets,
		Images: []bsky.Image{{Alt: altText(wallpaper.Copyright), Blob: blob}},
	})
	must(err)
	log.Printf("posted: %s", ref.URI)
}

// altText keeps the image description to a readable length.
func altText(copyright string) string {
	alt := strings.TrimSpace(copyright)
	if utf8.RuneCountInString(alt) <= 100 {
		return alt
	}
	runes := []rune(alt)
	return string(runes[:97]) + "..."
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
