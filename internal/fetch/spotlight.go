package fetch

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"bskybots/internal/model"
)

var spotlightBase = "https://fd.api.iris.microsoft.com"

// SpotlightImageHeaders are sent when downloading spotlight assets; the
// Microsoft CDN wants a Referer.
var SpotlightImageHeaders = map[string]string{
	"Referer": "https://www.microsoft.com/",
}

// SpotlightLocale is a country/locale pair accepted by the iris selection
// API.
type SpotlightLocale struct {
	Country string
	Locale  string
}

// SpotlightLocales are the pairs the bot rotates through. The API serves
// localized imagery per country while captions stay in English.
var SpotlightLocales = []SpotlightLocale{
	{"US", "en-US"}, {"JP", "en-US"}, {"AU", "en-US"}, {"GB", "en-US"},
	{"DE", "en-US"}, {"NZ", "en-US"}, {"CA", "en-US"}, {"IN", "en-US"},
	{"FR", "en-US"}, {"IT", "en-US"}, {"ES", "en-US"}, {"BR", "en-US"},
}

// RandomSpotlightLocale picks a pair at random.
func RandomSpotlightLocale() SpotlightLocale {
	return SpotlightLocales[rand.Intn(len(SpotlightLocales))]
}

// spotlightItem mirrors the double-encoded payload: each batch item holds a
// JSON string which itself decodes to the ad with the image assets.
type spotlightItem struct {
	Ad struct {
		Title          string `json:"title"`
		Copyright      string `json:"copyright"`
		LandscapeImage struct {
			Asset string `json:"asset"`
		} `json:"landscapeImage"`
		PortraitImage struct {
			Asset string `json:"asset"`
		} `json:"portraitImage"`
	} `json:"ad"`
}

// SpotlightImages fetches up to four Windows Spotlight entries for the
// locale from the iris v4 selection API. Landscape assets are preferred;
// items without any asset are skipped.
func SpotlightImages(loc SpotlightLocale) ([]model.SpotlightImage, error) {
	url := fmt.Sprintf("%s/v4/api/selection?placement=88000820&bcnt=4&country=%s&locale=%s&fmt=json",
		spotlightBase, loc.Country, loc.Locale)
	data, err := get(url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}

	var batch struct {
		BatchRsp struct {
			Items []struct {
				Item string `json:"item"`
			} `json:"items"`
		} `json:"batchrsp"`
	}
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse spotlight response: %w", err)
	}
	if len(batch.BatchRsp.Items) == 0 {
		return nil, fmt.Errorf("spotlight response for %s/%s has no items", loc.Country, loc.Locale)
	}

	var images []model.SpotlightImage
	for _, raw := range batch.BatchRsp.Items {
		if len(images) == 4 {
			break
		}
		var item spotlightItem
		if err := json.Unmarshal([]byte(raw.Item), &item); err != nil {
			return nil, fmt.Errorf("parse spotlight item: %w", err)
		}
		asset := item.Ad.LandscapeImage.Asset
		if asset == "" {
			asset = item.Ad.PortraitImage.Asset
		}
		if asset == "" {
			continue
		}
		images = append(images, model.SpotlightImage{
			URL:       asset,
			Title:     item.Ad.Title,
			Copyright: item.Ad.Copyright,
			Country:   loc.Country,
			Locale:    loc.Locale,
		})
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("spotlight response for %s/%s has no usable images", loc.Country, loc.Locale)
	}
	return images, nil
}
