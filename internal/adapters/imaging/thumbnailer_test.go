package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	t.Parallel()
	th := NewThumbnailer(0)
	info, err := th.Inspect(pngBytes(t, 64, 32, color.Black))
	require.NoError(t, err)
	require.Equal(t, 64, info.Width)
	require.Equal(t, 32, info.Height)

	_, err = th.Inspect([]byte("%PDF-1.7 not an image"))
	require.Error(t, err)
}

func TestThumbnailScalesDown(t *testing.T) {
	t.Parallel()
	th := NewThumbnailer(80)
	out, info, err := th.Thumbnail(pngBytes(t, 400, 200, color.RGBA{R: 200, A: 255}), 100)
	require.NoError(t, err)
	require.Equal(t, 100, info.Width)
	require.Equal(t, 50, info.Height)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 100, decoded.Bounds().Dx())
	require.Equal(t, 50, decoded.Bounds().Dy())
}

func TestThumbnailNeverUpscales(t *testing.T) {
	t.Parallel()
	th := NewThumbnailer(80)
	_, info, err := th.Thumbnail(pngBytes(t, 40, 30, color.White), 320)
	require.NoError(t, err)
	require.Equal(t, 40, info.Width)
	require.Equal(t, 30, info.Height)
}

func TestThumbnailFlattensTransparency(t *testing.T) {
	t.Parallel()
	th := NewThumbnailer(95)
	out, _, err := th.Thumbnail(pngBytes(t, 20, 20, color.NRGBA{}), 20)
	require.NoError(t, err)
	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(10, 10).RGBA()
	require.Greater(t, r>>8, uint32(240))
	require.Greater(t, g>>8, uint32(240))
	require.Greater(t, b>>8, uint32(240))
}

func TestScaledSize(t *testing.T) {
	t.Parallel()
	w, h := scaledSize(3000, 1, 300)
	require.Equal(t, 300, w)
	require.Equal(t, 1, h)
	_, _, err := NewThumbnailer(0).Thumbnail(pngBytes(t, 4, 4, color.Black), 0)
	require.Error(t, err)
}

func TestThumbnailUsesFirstGIFFrame(t *testing.T) {
	t.Parallel()
	palette := color.Palette{color.White, color.RGBA{G: 180, A: 255}}
	frame := func(idx uint8) *image.Paletted {
		img := image.NewPaletted(image.Rect(0, 0, 60, 30), palette)
		for i := range img.Pix {
			img.Pix[i] = idx
		}
		return img
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image: []*image.Paletted{frame(1), frame(0)},
		Delay: []int{10, 10},
	}))

	th := NewThumbnailer(90)
	info, err := th.Inspect(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 60, info.Width)

	out, thumb, err := th.Thumbnail(buf.Bytes(), 30)
	require.NoError(t, err)
	require.Equal(t, 30, thumb.Width)
	require.Equal(t, 15, thumb.Height)
	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, _, _ := decoded.At(15, 7).RGBA()
	require.Greater(t, g>>8, uint32(140))
	require.Less(t, r>>8, uint32(60))
}
