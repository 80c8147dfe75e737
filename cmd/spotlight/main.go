// Command spotlight posts up to four Windows Spotlight images for a random
// locale in a single multi-image post.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"bskybots/internal/bsky"
	"bskybots/internal/caption"
	"bskybots/internal/config"
	"bskybots/internal/fetch"
	"bskybots/internal/imaging"
	"bskybots/internal/model"
)

var hashtags = []string{"WindowsSpotlight", "Spotlight", "Wallpaper", "Microsoft", "Photography"}

const (
	mentionHandle = "sayed.page"
	mentionDID    = "did:plc:gn2mtw5tqnrp22r66gkikfla"
)

type downloaded struct {
	info model.SpotlightImage
	data []byte
}

func main() {
	log.SetFlags(0)
	config.Load()

	loc := fetch.RandomSpotlightLocale()
	log.Printf("using country: %s, locale: %s", loc.Country, loc.Locale)

	images, err := fetch.SpotlightImages(loc)
	must(err)
	log.Printf("found %d spotlight images", len(images))

	var posts []downloaded
	for i, img := range images {
		log.Printf("downloading image #%d: %s", i+1, img.Title)
		data, err := fetch.DownloadImage(img.URL, true, fetch.SpotlightImageHeaders)
		if err != nil {
			log.Printf("warning: skipping image #%d: %v", i+1, err)
			continue
		}
		fitted, err := imaging.FitUnder(data, imaging.MaxBlobSize)
		if errors.Is(err, imaging.ErrTooLarge) {
			log.Printf("warning: image #%d still over the size limit at minimum quality", i+1)
		} else if err != nil {
			log.Printf("warning: skipping image #%d: %v", i+1, err)
			continue
		}
		posts = append(posts, downloaded{info: img, data: fitted})
	}
	if len(posts) == 0 {
		log.Fatal("no images were downloaded successfully")
	}

	text, facets := buildCaption(posts)

	if !config.PostingEnabled() {
		log.Print("POST_TO_BLUESKY not set to true, skipping post")
		log.Printf("would post %d images:\n%s", len(posts), text)
		os.Exit(0)
	}

	creds, err := config.BlueskyCredentials()
	must(err)

	ctx := context.Background()
	client := bsky.NewClient(nil)
	must(client.Login(ctx, creds.Handle, creds.Password))
	log.Printf("logged in as @%s", client.Handle())

	var embeds []bsky.Image
	for i, p := range posts {
		log.Printf("uploading image %d/%d", i+1, len(posts))
		blob, err := client.UploadBlob(ctx, p.data)
		must(err)
		embeds = append(embeds, bsky.Image{Alt: altText(p.info), Blob: blob})
	}

	ref, err := client.CreatePost(ctx, bsky.Post{Text: text, Facets: facets, Images: embeds})
	must(err)
	log.Printf("posted: %s", ref.URI)
}

func buildCaption(posts []downloaded) (string, []caption.Facet) {
	b := caption.NewBuilder(caption.DefaultLimit)
	b.Text("🖼️ Windows Spotlight Images\n\n")
	var titles strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&titles, "📝 %s\n", p.info.Title)
	}
	b.Text(titles.String())
	b.Text("\n")
	for _, tag := range hashtags {
		b.Tag(tag)
	}
	b.Mention(mentionHandle, mentionDID)
	return b.Build()
}

// altText carries the full credit line per image, capped for readability.
func altText(info model.SpotlightImage) string {
	alt := fmt.Sprintf("%s - %s", info.Title, info.Copyright)
	if utf8.RuneCountInString(alt) <= 200 {
		return alt
	}
	runes := []rune(alt)
	return string(runes[:197]) + "..."
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
