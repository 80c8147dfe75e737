// Package imaging fits encoded images under a byte ceiling.
//
// The policy is quality-first: pixel dimensions are only touched when no
// JPEG quality level can satisfy the bound, so framing survives at the cost
// of detail.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"log"

	_ "image/gif"
	_ "image/png"

	_ "github.com/gen2brain/webp" // webp decode registration

	xdraw "golang.org/x/image/draw"
)

// MaxBlobSize is the Bluesky image upload ceiling (976.56 KB).
const MaxBlobSize = 976 * 1024

const (
	qualityMax   = 100
	qualityMin   = 20
	qualityStep  = 5
	shrinkFactor = 0.9
	// Quality used for re-encodes once downscaling has started.
	shrinkQuality = 85
	// Neither dimension is shrunk below this.
	minDimension = 100
)

// ErrTooLarge reports that no quality level or downscale step satisfied the
// bound; the accompanying bytes are the smallest encoding achieved.
var ErrTooLarge = errors.New("image cannot be reduced below size limit")

// FitUnder returns an encoding of data that is at most maxSize bytes.
//
// Input already at or below the bound is returned byte-identical. Otherwise
// the image is flattened onto white and re-encoded as JPEG at descending
// quality (100 down to 20 in steps of 5); if that fails, both dimensions are
// shrunk by 0.9 per step and re-encoded at quality 85 until the result fits
// or a dimension would drop below 100px, at which point the best effort is
// returned together with ErrTooLarge.
func FitUnder(data []byte, maxSize int) ([]byte, error) {
	if len(data) <= maxSize {
		log.Printf("image size %d bytes is within limit, no compression needed", len(data))
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img := flatten(src)

	log.Printf("image size %d bytes exceeds limit %d, reducing quality", len(data), maxSize)
	var out []byte
	for q := qualityMax; q >= qualityMin; q -= qualityStep {
		out, err = encodeJPEG(img, q)
		if err != nil {
			return nil, err
		}
		log.Printf("  quality %d%%: %d bytes", q, len(out))
		if len(out) <= maxSize {
			return out, nil
		}
	}

	log.Printf("still %d bytes at %d%% quality, downscaling", len(out), qualityMin)
	for {
		w := int(float64(img.Bounds().Dx()) * shrinkFactor)
		h := int(float64(img.Bounds().Dy()) * shrinkFactor)
		if w < minDimension || h < minDimension {
			return out, ErrTooLarge
		}
		img = Scale(img, w, h)
		out, err = encodeJPEG(img, shrinkQuality)
		if err != nil {
			return nil, err
		}
		log.Printf("  resized to %dx%d: %d bytes", w, h, len(out))
		if len(out) <= maxSize {
			return out, nil
		}
	}
}

// flatten composites src over an opaque white background, dropping any
// transparency before JPEG encoding.
func flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// Scale resamples src to w x h with a high-quality filter.
func Scale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// LooksLikeImage reports whether data starts with a JPEG or PNG signature.
// Some CDNs serve image bytes under a text content type, so sniffing the
// payload is more reliable than trusting headers.
func LooksLikeImage(data []byte) bool {
	if len(data) >= 3 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff {
		return true
	}
	if len(data) >= 4 && bytes.Equal(data[:4], []byte("\x89PNG")) {
		return true
	}
	return false
}
