// Package render composes the fixed-canvas post cards: a dark rounded card
// with a profile header and a block of centred, auto-shrinking text lines.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"bskybots/internal/model"
)

// Span is a run of text drawn in one colour.
type Span struct {
	Text  string
	Color color.Color
}

// Line is one content line of the card. Size is the target font size; when
// the rendered width exceeds the content width the size is reduced by Step
// down to MinSize, and the line is drawn at MinSize even if it still
// overflows.
type Line struct {
	Spans         []Span
	Size          float64
	MinSize       float64
	Step          float64
	SpacingBefore int
}

// PlainLine builds a single-colour Line.
func PlainLine(text string, c color.Color, size, min, step float64, spacingBefore int) Line {
	return Line{
		Spans:         []Span{{Text: text, Color: c}},
		Size:          size,
		MinSize:       min,
		Step:          step,
		SpacingBefore: spacingBefore,
	}
}

// CardConfig fixes the geometry of one card variant. The two variants below
// ship with deliberately different constants; they are independent
// configurations, not one layout with overrides.
type CardConfig struct {
	Width, Height int
	CardMargin    int
	CardRadius    int
	BorderWidth   int

	HeaderY          int
	HeaderPadding    int
	AvatarSize       int
	LogoSize         int
	HeaderTextHeight int
	NameSize         float64
	NameGap          int

	ContentInset    int // horizontal padding inside the card for content lines
	LineHeightScale float64
}

// BagdharaCard is the idiom-of-the-day layout: large header type and avatar.
var BagdharaCard = CardConfig{
	Width: 1080, Height: 1080,
	CardMargin: 60, CardRadius: 20, BorderWidth: 2,
	HeaderY: 90, HeaderPadding: 100,
	AvatarSize: 128, LogoSize: 128, HeaderTextHeight: 130,
	NameSize: 60, NameGap: 70,
	ContentInset: 80, LineHeightScale: 1.3,
}

// BanglaDateCard is the calendar layout: compact header, tighter leading.
var BanglaDateCard = CardConfig{
	Width: 1080, Height: 1080,
	CardMargin: 60, CardRadius: 20, BorderWidth: 2,
	HeaderY: 90, HeaderPadding: 100,
	AvatarSize: 64, LogoSize: 60, HeaderTextHeight: 72,
	NameSize: 36, NameGap: 36,
	ContentInset: 80, LineHeightScale: 1.2,
}

// ContentWidth is the horizontal space available to content lines.
func (c CardConfig) ContentWidth() int {
	return c.Width - 2*c.CardMargin - c.ContentInset
}

// Assets carries the resources a card needs besides its text.
type Assets struct {
	Font    *Font
	Profile model.Profile
	Avatar  image.Image // nil draws a placeholder circle
	Logo    image.Image // nil draws a placeholder circle
}

// FitSize returns the font size at which all spans fit the content width:
// the target size when it already fits, otherwise the first size at or above
// MinSize reached by repeated Step decrements that fits, otherwise MinSize.
func (c CardConfig) FitSize(f *Font, l Line) (float64, error) {
	size := l.Size
	for {
		w, err := lineWidth(f, l.Spans, size)
		if err != nil {
			return 0, err
		}
		if w <= c.ContentWidth() || l.Step <= 0 || size <= l.MinSize {
			return size, nil
		}
		size -= l.Step
		if size < l.MinSize {
			size = l.MinSize
		}
	}
}

func lineWidth(f *Font, spans []Span, size float64) (int, error) {
	total := 0
	for _, s := range spans {
		w, err := f.Measure(s.Text, size)
		if err != nil {
			return 0, err
		}
		total += w
	}
	return total, nil
}

// Compose renders the card: background, rounded bordered panel, profile
// header with logo, and the content lines vertically centred as a block.
func (c CardConfig) Compose(a Assets, lines []Line) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	card := image.Rect(c.CardMargin, c.CardMargin, c.Width-c.CardMargin, c.Height-c.CardMargin)
	fillRoundedRect(img, card, c.CardRadius, Border)
	inner := card.Inset(c.BorderWidth)
	fillRoundedRect(img, inner, c.CardRadius-c.BorderWidth, CardBg)

	if err := c.drawHeader(img, a); err != nil {
		return nil, err
	}
	if err := c.drawContent(img, a.Font, lines); err != nil {
		return nil, err
	}
	return img, nil
}

func (c CardConfig) drawHeader(img *image.RGBA, a Assets) error {
	avatarX := c.HeaderPadding
	avatarY := c.HeaderY + (c.HeaderTextHeight-c.AvatarSize)/2

	if a.Avatar != nil {
		pasteCircular(img, a.Avatar, avatarX, avatarY, c.AvatarSize)
	} else {
		fillCircle(img, avatarX, avatarY, c.AvatarSize, Accent)
		strokeCircle(img, avatarX, avatarY, c.AvatarSize, 2, TextPrimary)
	}

	face, err := a.Font.Face(c.NameSize)
	if err != nil {
		return err
	}
	textX := c.HeaderPadding + c.AvatarSize + 20
	drawText(img, face, textX, c.HeaderY, a.Profile.DisplayName, TextPrimary)
	drawText(img, face, textX, c.HeaderY+c.NameGap, "@"+a.Profile.Handle, TextSecondary)

	logoX := c.Width - c.HeaderPadding - c.LogoSize
	logoY := c.HeaderY + (c.HeaderTextHeight-c.LogoSize)/2
	if a.Logo != nil {
		paste(img, a.Logo, logoX, logoY, c.LogoSize, c.LogoSize)
	} else {
		fillCircle(img, logoX, logoY, c.LogoSize, Accent)
	}
	return nil
}

func (c CardConfig) drawContent(img *image.RGBA, f *Font, lines []Line) error {
	// First pass: settle sizes and heights so the block can be centred.
	sizes := make([]float64, len(lines))
	heights := make([]int, len(lines))
	total := 0
	for i, l := range lines {
		size, err := c.FitSize(f, l)
		if err != nil {
			return err
		}
		sizes[i] = size
		heights[i] = int(size * c.LineHeightScale)
		total += heights[i] + l.SpacingBefore
	}

	y := (c.Height - total) / 2
	for i, l := range lines {
		y += l.SpacingBefore
		w, err := lineWidth(f, l.Spans, sizes[i])
		if err != nil {
			return err
		}
		x := (c.Width - w) / 2
		face, err := f.Face(sizes[i])
		if err != nil {
			return err
		}
		for _, s := range l.Spans {
			drawText(img, face, x, y, s.Text, s.Color)
			sw, err := f.Measure(s.Text, sizes[i])
			if err != nil {
				return err
			}
			x += sw
		}
		y += heights[i]
	}
	return nil
}
