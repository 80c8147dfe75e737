// Package fetch pulls the source material for each bot: proverb lists,
// wallpaper feeds, spotlight items and the movie dataset.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"bskybots/internal/imaging"
)

// browserUA is sent to endpoints that reject default Go clients.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var httpClient = &http.Client{Timeout: 60 * time.Second}

func get(url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// minImageSize guards against CDN placeholder responses that come back with
// a 200 status but no real payload.
const minImageSize = 50_000

// DownloadImage fetches url and returns its bytes. Extra headers are merged
// over the Accept default, for sources that want a Referer. With validate
// set, bodies under 50KB or without a JPEG/PNG signature are rejected; some
// CDNs label real image bytes text/plain, so the Content-Type header is
// ignored either way.
func DownloadImage(url string, validate bool, headers map[string]string) ([]byte, error) {
	h := map[string]string{
		"Accept": "image/webp,image/apng,image/*,*/*;q=0.8",
	}
	for k, v := range headers {
		h[k] = v
	}
	data, err := get(url, h)
	if err != nil {
		return nil, err
	}
	if validate {
		if len(data) < minImageSize {
			return nil, fmt.Errorf("image at %s is %d bytes, likely a placeholder", url, len(data))
		}
		if !imaging.LooksLikeImage(data) {
			return nil, fmt.Errorf("response from %s is not image data (leading bytes %x)", url, data[:min(10, len(data))])
		}
	}
	return data, nil
}
