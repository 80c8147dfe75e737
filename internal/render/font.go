package render

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Font is a parsed TTF with a face cache per size.
type Font struct {
	ft    *opentype.Font
	faces map[float64]font.Face
}

// ParseFont parses raw TTF/OTF bytes.
func ParseFont(data []byte) (*Font, error) {
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Font{ft: ft, faces: map[float64]font.Face{}}, nil
}

// LoadFont reads the first parseable font file in paths. When none works it
// falls back to the bundled Go Regular face, so callers always get a usable
// font; glyph coverage for Bangla then depends on the configured asset.
func LoadFont(paths ...string) *Font {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := ParseFont(data)
		if err != nil {
			log.Printf("font %s unusable: %v", p, err)
			continue
		}
		return f
	}
	if len(paths) > 0 {
		log.Printf("no usable font among %d candidates, using bundled fallback", len(paths))
	}
	f, err := ParseFont(goregular.TTF)
	if err != nil {
		// The bundled font is a compile-time constant; failing to parse it
		// means the binary itself is broken.
		panic(err)
	}
	return f
}

// Face returns a rendering face at the given pixel size.
func (f *Font) Face(size float64) (font.Face, error) {
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("face at %.0fpx: %w", size, err)
	}
	f.faces[size] = face
	return face, nil
}

// Measure returns the advance width of text in pixels at the given size.
func (f *Font) Measure(text string, size float64) (int, error) {
	face, err := f.Face(size)
	if err != nil {
		return 0, err
	}
	return font.MeasureString(face, text).Ceil(), nil
}
