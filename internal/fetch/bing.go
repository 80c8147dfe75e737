package fetch

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"bskybots/internal/model"
)

var bingBase = "https://www.bing.com"

// BingRegions are the market codes the wallpaper feed is queried with.
var BingRegions = []string{
	"en-US", "ja-JP", "en-AU", "en-GB", "de-DE",
	"en-NZ", "en-CA", "en-IN", "fr-FR", "fr-CA",
	"it-IT", "es-ES", "pt-BR", "en-ROW",
}

// RandomBingRegion picks a market code at random.
func RandomBingRegion() string {
	return BingRegions[rand.Intn(len(BingRegions))]
}

// BingWallpaper fetches today's wallpaper entry for the given market from
// the HPImageArchive feed, requesting the 1920x1080 UHD variant. The image
// URL in the feed carries extra query parameters after an ampersand; those
// are stripped so the download hits the plain asset.
func BingWallpaper(region string) (model.Wallpaper, error) {
	url := fmt.Sprintf("%s/HPImageArchive.aspx?format=js&idx=0&n=1&mkt=%s&uhd=1&uhdwidth=1920&uhdheight=1080", bingBase, region)
	data, err := get(url, map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
	})
	if err != nil {
		return model.Wallpaper{}, err
	}

	var feed struct {
		Images []struct {
			URL           string `json:"url"`
			Copyright     string `json:"copyright"`
			CopyrightLink string `json:"copyrightlink"`
			StartDate     string `json:"startdate"`
			EndDate       string `json:"enddate"`
		} `json:"images"`
	}
	if err := json.Unmarshal(data, &feed); err != nil {
		return model.Wallpaper{}, fmt.Errorf("parse wallpaper feed: %w", err)
	}
	if len(feed.Images) == 0 {
		return model.Wallpaper{}, fmt.Errorf("wallpaper feed for %s has no images", region)
	}

	img := feed.Images[0]
	imageURL := img.URL
	if i := strings.Index(imageURL, "&"); i != -1 {
		imageURL = imageURL[:i]
	}
	return model.Wallpaper{
		URL:           bingBase + imageURL,
		Copyright:     img.Copyright,
		CopyrightLink: img.CopyrightLink,
		StartDate:     img.StartDate,
		EndDate:       img.EndDate,
		Region:        region,
	}, nil
}
