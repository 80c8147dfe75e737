// Command yearprogress posts a Unicode progress bar for the current year,
// then replies to its own post with the remaining percentage.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"bskybots/internal/bsky"
	"bskybots/internal/config"
	"bskybots/internal/progress"
)

func main() {
	log.SetFlags(0)
	config.Load()

	now := time.Now()
	bar, pct, remaining, err := progress.Year(now)
	must(err)
	year := now.UTC().Year()

	postText := fmt.Sprintf("📅 Year %d Progress\n%s %.2f%%", year, bar, pct)
	replyText := fmt.Sprintf("%.2f%% of %d is remaining.", remaining, year)

	log.Printf("post text:\n%s", postText)
	log.Printf("reply text: %s", replyText)

	if !config.PostingEnabled() {
		log.Print("POST_TO_BLUESKY not set to true, skipping post")
		os.Exit(0)
	}

	creds, err := config.BlueskyCredentials()
	must(err)

	ctx := context.Background()
	client := bsky.NewClient(nil)
	must(client.Login(ctx, creds.Handle, creds.Password))
	log.Printf("logged in as @%s", client.Handle())

	ref, err := client.CreatePost(ctx, bsky.Post{Text: postText})
	must(err)
	log.Printf("posted year progress: %s", ref.URI)

	// The reply is decoration; the run already succeeded at this point.
	reply, err := client.CreatePost(ctx, bsky.Post{Text: replyText, ReplyTo: &ref})
	if err != nil {
		log.Printf("warning: could not reply to own post: %v", err)
		return
	}
	log.Printf("posted reply: %s", reply.URI)
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
