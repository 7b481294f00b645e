package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/prof-ramos/asof-site/internal/ports"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxPixels bounds decoded images so a small file cannot expand into a huge bitmap.
const maxPixels = 40_000_000

// Thumbnailer renders JPEG previews of raster uploads.
type Thumbnailer struct {
	quality int
}

func NewThumbnailer(quality int) *Thumbnailer {
	if quality <= 0 || quality > 100 {
		quality = 82
	}
	return &Thumbnailer{quality: quality}
}

func (t *Thumbnailer) Inspect(data []byte) (ports.ImageInfo, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ports.ImageInfo{}, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ports.ImageInfo{}, errors.New("image has no pixels")
	}
	if cfg.Width*cfg.Height > maxPixels {
		return ports.ImageInfo{}, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}
	return ports.ImageInfo{Width: cfg.Width, Height: cfg.Height}, nil
}

// Thumbnail scales the image to maxWidth keeping the aspect ratio. Images
// narrower than maxWidth keep their size.
func (t *Thumbnailer) Thumbnail(data []byte, maxWidth int) ([]byte, ports.ImageInfo, error) {
	if maxWidth <= 0 {
		return nil, ports.ImageInfo{}, errors.New("thumbnail width must be positive")
	}
	if _, err := t.Inspect(data); err != nil {
		return nil, ports.ImageInfo{}, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ports.ImageInfo{}, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := scaledSize(b.Dx(), b.Dy(), maxWidth)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha; transparent areas become white.
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, ports.ImageInfo{}, fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Bytes(), ports.ImageInfo{Width: w, Height: h}, nil
}

func scaledSize(width, height, maxWidth int) (int, int) {
	if width <= maxWidth {
		return width, height
	}
	h := height * maxWidth / width
	if h < 1 {
		h = 1
	}
	return maxWidth, h
}
