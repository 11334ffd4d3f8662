// Package imaging post-processes device screenshots: element annotation,
// scaling and re-encoding.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/tas33n/DroidWright/internal/model"
)

// LabelMode controls what text is drawn on each annotated element.
type LabelMode int

const (
	// LabelCoords draws the element's "(x,y)" tap point.
	LabelCoords LabelMode = iota
	// LabelIndex draws "[i]", the element's index in a flat dump.
	LabelIndex
)

// Options describes how a screenshot is processed.
type Options struct {
	Scale    float64 // 0 or 1 keeps the original size
	Format   string  // png (default), jpg or jpeg
	Quality  int     // JPEG quality 1-100
	Annotate []model.Element
	Labels   LabelMode
}

// Process decodes a PNG screenshot, applies the options and re-encodes it.
// It returns the encoded bytes and their MIME type.
func Process(data []byte, opts Options) ([]byte, string, error) {
	if opts.Scale < 0 || opts.Scale > 1 {
		return nil, "", fmt.Errorf("scale must be between 0 and 1, got %v", opts.Scale)
	}
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "jpg" && format != "jpeg" {
		return nil, "", fmt.Errorf("unsupported image format: %s (use png or jpg)", opts.Format)
	}
	if len(opts.Annotate) == 0 && (opts.Scale == 0 || opts.Scale == 1) && format == "png" {
		return data, "image/png", nil
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode screenshot: %w", err)
	}
	if len(opts.Annotate) > 0 {
		img = Annotate(img, opts.Annotate, opts.Labels)
	}
	if opts.Scale > 0 && opts.Scale < 1 {
		img = Scale(img, opts.Scale)
	}

	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}

// Scale resizes img by factor.
func Scale(img image.Image, factor float64) image.Image {
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Annotate draws a box and label for every element in the trees. Element
// bounds are device pixels, the same space screencap captures.
func Annotate(img image.Image, elements []model.Element, mode LabelMode) *image.RGBA {
	rgba := ToRGBA(img)

	boxColor := color.RGBA{R: 255, G: 0, B: 0, A: 100}
	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor := color.RGBA{R: 0, G: 0, B: 0, A: 200}

	i := 0
	var walk func([]model.Element)
	walk = func(els []model.Element) {
		for _, el := range els {
			drawElement(rgba, el, i, mode, boxColor, textColor, outlineColor)
			i++
			walk(el.Children)
		}
	}
	walk(elements)
	return rgba
}

// ToRGBA converts any image to RGBA.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	xdraw.Draw(rgba, b, img, b.Min, xdraw.Src)
	return rgba
}

func drawElement(img *image.RGBA, el model.Element, index int, mode LabelMode, boxColor, textColor, outlineColor color.Color) {
	r := el.Bounds
	if r.Empty() {
		return
	}
	drawRectangle(img, r.Left(), r.Top(), r.Right(), r.Bottom(), boxColor)

	c := r.Center()
	label := c.String()
	if mode == LabelIndex {
		label = fmt.Sprintf("[%d]", index)
	}
	drawTextWithOutline(img, label, c.X, c.Y, textColor, outlineColor)
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	b := img.Bounds()
	x1, y1 = max(x1, b.Min.X), max(y1, b.Min.Y)
	x2, y2 = min(x2, b.Max.X), min(y2, b.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return
	}
	for x := x1; x < x2; x++ {
		img.Set(x, y1, c)
		img.Set(x, y2-1, c)
	}
	for y := y1; y < y2; y++ {
		img.Set(x1, y, c)
		img.Set(x2-1, y, c)
	}
}

// drawTextWithOutline centres text on (x, y) with a one-pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	// basicfont.Face7x13 glyphs are 7 pixels wide and 13 high.
	offsetX := x - len(text)*7/2
	offsetY := y - 13/2

	draw := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(offsetX+dx, offsetY+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				draw(dx, dy, outlineColor)
			}
		}
	}
	draw(0, 0, textColor)
}
