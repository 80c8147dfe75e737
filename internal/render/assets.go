package render

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"net/http"

	_ "image/jpeg"
	_ "image/png"

	"bskybots/internal/model"
)

// LogoURL is the Bluesky app icon pasted into the card header.
var LogoURL = "https://bsky.app/static/apple-touch-icon.png"

// LoadAssets gathers the header resources for a card. The avatar comes from
// the profile, the logo from LogoURL; either failing just leaves the
// placeholder circle, a missing decoration never blocks a run.
func LoadAssets(font *Font, profile model.Profile) Assets {
	a := Assets{Font: font, Profile: profile}
	if profile.Avatar != "" {
		img, err := fetchImage(profile.Avatar)
		if err != nil {
			log.Printf("avatar unavailable: %v", err)
		} else {
			a.Avatar = img
		}
	}
	img, err := fetchImage(LogoURL)
	if err != nil {
		log.Printf("logo unavailable: %v", err)
	} else {
		a.Logo = img
	}
	return a
}

func fetchImage(url string) (image.Image, error) {
	resp, err := assetHTTPClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %s", url, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}
