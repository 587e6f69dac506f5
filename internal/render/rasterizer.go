package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"bouquet-studio-backend/internal/canvas"
)

const (
	// DefaultPixelRatio matches the export density of the browser stage.
	DefaultPixelRatio = 2.0
	// SleeveFill is the share of the surface the sleeve is fitted into.
	SleeveFill = 0.95
)

// ImageSource resolves an asset reference to a decoded image.
type ImageSource interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Rasterizer draws a snapshot of canvas items.
type Rasterizer struct {
	Source     ImageSource
	PixelRatio float64
}

func NewRasterizer(src ImageSource, pixelRatio float64) *Rasterizer {
	if pixelRatio <= 0 {
		pixelRatio = DefaultPixelRatio
	}
	return &Rasterizer{Source: src, PixelRatio: pixelRatio}
}

// Rasterize composes items and encodes the result as PNG.
func (r *Rasterizer) Rasterize(ctx context.Context, items []canvas.Item) ([]byte, error) {
	img, err := r.Compose(ctx, items)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Compose draws the sleeve, then every ordinary item in collection order.
// The background is never drawn.
func (r *Rasterizer) Compose(ctx context.Context, items []canvas.Item) (*image.RGBA, error) {
	ratio := r.PixelRatio
	if ratio <= 0 {
		ratio = DefaultPixelRatio
	}
	size := int(math.Round(canvas.DesignWidth * ratio))
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	for _, it := range items {
		if it.Kind != canvas.KindSleeve {
			continue
		}
		src, err := r.Source.Load(ctx, it.Src)
		if err != nil {
			return nil, fmt.Errorf("failed to load sleeve: %w", err)
		}
		drawAff(dst, src, SleeveTransform(src.Bounds(), ratio))
		break
	}

	for _, it := range items {
		if it.Kind.Structural() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := r.Source.Load(ctx, it.Src)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", it.DisplayLabel(), err)
		}
		drawAff(dst, src, ItemTransform(it, ratio))
	}
	return dst, nil
}

// SleeveTransform fits a sleeve image of the given bounds into SleeveFill
// of the surface and centres it.
func SleeveTransform(b image.Rectangle, ratio float64) f64.Aff3 {
	w, h := float64(b.Dx()), float64(b.Dy())
	s := min(canvas.DesignWidth*SleeveFill/w, canvas.DesignHeight*SleeveFill/h)
	x := (canvas.DesignWidth - w*s) / 2
	y := (canvas.DesignHeight - h*s) / 2
	return f64.Aff3{
		s * ratio, 0, x * ratio,
		0, s * ratio, y * ratio,
	}
}

// ItemTransform maps source pixels to output pixels: translate to (x, y),
// rotate around the top-left corner, then scale uniformly.
func ItemTransform(it canvas.Item, ratio float64) f64.Aff3 {
	rad := it.Rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)
	s := it.Scale * ratio
	return f64.Aff3{
		s * cos, -s * sin, it.X * ratio,
		s * sin, s * cos, it.Y * ratio,
	}
}

func drawAff(dst *image.RGBA, src image.Image, m f64.Aff3) {
	b := src.Bounds()
	if b.Min != (image.Point{}) {
		// keep the source origin at the item's top-left corner
		m[2] -= m[0]*float64(b.Min.X) + m[1]*float64(b.Min.Y)
		m[5] -= m[3]*float64(b.Min.X) + m[4]*float64(b.Min.Y)
	}
	draw.CatmullRom.Transform(dst, m, src, b, draw.Over, nil)
}

// FitScale returns the auto-fit scale for an item whose image has the
// given natural width. Items that were already scaled keep their scale.
func FitScale(it canvas.Item, width int) float64 {
	if it.Scale != 1 || width <= 0 {
		return it.Scale
	}
	limit := it.MaxWidth
	if limit <= 0 {
		limit = canvas.DefaultMaxFootprint
	}
	return min(1, limit/float64(width))
}
