package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"
)

// noisePNG encodes a w x h image of seeded noise as PNG. Noise resists JPEG
// compression, which makes the quality ladder observable.
func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(rng.Intn(256))
	}
	// Opaque alpha.
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFitUnder_AlreadySmallIsByteIdentical(t *testing.T) {
	data := []byte("not even an image, must pass through untouched")
	out, err := FitUnder(data, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data) {
		t.Error("below-limit input was modified")
	}
}

func TestFitUnder_QualityLadderFits(t *testing.T) {
	data := noisePNG(t, 300, 300)
	limit := 100_000
	if len(data) <= limit {
		t.Fatalf("fixture too small to exercise reduction: %d bytes", len(data))
	}

	out, err := FitUnder(data, limit)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) > limit {
		t.Errorf("output is %d bytes, limit %d", len(out), limit)
	}
	if !LooksLikeImage(out) {
		t.Error("output does not look like an encoded image")
	}
	if out[0] != 0xff || out[1] != 0xd8 {
		t.Error("reduced output should be JPEG")
	}
}

func TestFitUnder_FloorReturnsBestEffort(t *testing.T) {
	// 120x120 noise with an absurd limit: one shrink step reaches the 100px
	// floor, so the call must fail but still hand back its smallest attempt.
	data := noisePNG(t, 120, 120)
	out, err := FitUnder(data, 300)
	if err == nil {
		t.Fatal("expected ErrTooLarge")
	}
	if err != ErrTooLarge {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Error("best-effort bytes missing")
	}
}

func TestFitUnder_GarbageOverLimit(t *testing.T) {
	junk := bytes.Repeat([]byte{0xde, 0xad}, 2000)
	if _, err := FitUnder(junk, 100); err == nil {
		t.Fatal("expected decode error for non-image data over the limit")
	}
}

func TestFlatten_TransparencyOntoWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})       // opaque red
	src.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0}) // fully transparent

	out := flatten(src)
	if r, _, _, _ := out.At(0, 0).RGBA(); r>>8 != 255 {
		t.Errorf("opaque pixel lost: %v", out.At(0, 0))
	}
	r, g, b, _ := out.At(1, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("transparent pixel should flatten to white, got %v", out.At(1, 0))
	}
}

func TestLooksLikeImage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"jpeg magic", []byte{0xff, 0xd8, 0xff, 0xe0}, true},
		{"png magic", []byte("\x89PNG\r\n\x1a\n"), true},
		{"html page", []byte("<html><body>nope"), false},
		{"empty", nil, false},
		{"short", []byte{0xff}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeImage(tt.data); got != tt.want {
				t.Errorf("LooksLikeImage = %v, want %v", got, tt.want)
			}
		})
	}
}
