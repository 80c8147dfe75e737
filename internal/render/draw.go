package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"bskybots/internal/imaging"
)

// Dark theme palette (Tailwind slate plus the Bluesky blue).
var (
	Background    = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	CardBg        = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
	Border        = color.RGBA{0x33, 0x41, 0x55, 0xff}
	TextPrimary   = color.RGBA{0xe7, 0xe9, 0xea, 0xff}
	TextSecondary = color.RGBA{0x71, 0x76, 0x7b, 0xff}
	Accent        = color.RGBA{0x00, 0x85, 0xff, 0xff}
)

// fillRoundedRect fills r with c, rounding the corners by radius.
func fillRoundedRect(dst draw.Image, r image.Rectangle, radius int, c color.Color) {
	rr := radius * radius
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if dx, dy := cornerOffset(r, radius, x, y); dx*dx+dy*dy > rr {
				continue
			}
			dst.Set(x, y, c)
		}
	}
}

// cornerOffset returns the distance components from (x, y) to the nearest
// corner-circle centre, or zeros when the point is outside every corner zone.
func cornerOffset(r image.Rectangle, radius, x, y int) (int, int) {
	var dx, dy int
	switch {
	case x < r.Min.X+radius:
		dx = r.Min.X + radius - x
	case x >= r.Max.X-radius:
		dx = x - (r.Max.X - radius - 1)
	default:
		return 0, 0
	}
	switch {
	case y < r.Min.Y+radius:
		dy = r.Min.Y + radius - y
	case y >= r.Max.Y-radius:
		dy = y - (r.Max.Y - radius - 1)
	default:
		return 0, 0
	}
	return dx, dy
}

// fillCircle fills an axis-aligned circle of diameter d with c, with its
// bounding box anchored at (x, y).
func fillCircle(dst draw.Image, x, y, d int, c color.Color) {
	mask := circleMask(d)
	draw.DrawMask(dst, image.Rect(x, y, x+d, y+d), image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// strokeCircle draws a ring of the given width just inside the circle.
func strokeCircle(dst draw.Image, x, y, d, width int, c color.Color) {
	outer := circleMask(d)
	inner := circleMask(d - 2*width)
	for py := 0; py < d; py++ {
		for px := 0; px < d; px++ {
			if outer.AlphaAt(px, py).A == 0 {
				continue
			}
			ix, iy := px-width, py-width
			if ix >= 0 && iy >= 0 && ix < d-2*width && iy < d-2*width && inner.AlphaAt(ix, iy).A != 0 {
				continue
			}
			dst.Set(x+px, y+py, c)
		}
	}
}

// circleMask returns an alpha mask for a circle of diameter d.
func circleMask(d int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, d, d))
	r := float64(d) / 2
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			dx := float64(x) + 0.5 - r
			dy := float64(y) + 0.5 - r
			if dx*dx+dy*dy <= r*r {
				mask.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return mask
}

// pasteCircular scales src to a d x d square and pastes it through a
// circular mask anchored at (x, y).
func pasteCircular(dst draw.Image, src image.Image, x, y, d int) {
	scaled := imaging.Scale(src, d, d)
	draw.DrawMask(dst, image.Rect(x, y, x+d, y+d), scaled, image.Point{}, circleMask(d), image.Point{}, draw.Over)
}

// paste scales src to w x h and draws it at (x, y), honouring transparency.
func paste(dst draw.Image, src image.Image, x, y, w, h int) {
	scaled := imaging.Scale(src, w, h)
	draw.Draw(dst, image.Rect(x, y, x+w, y+h), scaled, image.Point{}, draw.Over)
}

// drawText draws s with its top-left corner at (x, yTop).
func drawText(dst draw.Image, face font.Face, x, yTop int, s string, c color.Color) {
	m := face.Metrics()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, yTop+m.Ascent.Ceil()),
	}
	d.DrawString(s)
}
