// Package texture decodes painted maps and samples them in UV space.
package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// Texture is a decoded 8-bit RGBA image addressed by UV coordinates.
// UV (0,0) is the bottom-left corner, V grows upward.
type Texture struct {
	img *image.NRGBA
}

// New wraps an image, converting it to NRGBA if needed.
func New(img image.Image) *Texture {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return &Texture{img: nrgba}
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Texture{img: dst}
}

// Load decodes a texture from disk. The decoder is chosen from the file
// extension for TGA and from the content for everything else.
func Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode decodes a texture; name is only used to detect TGA data.
func Decode(r io.Reader, name string) (*Texture, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return &Texture{img: img}, nil
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return New(img), nil
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (int, int) {
	return t.img.Rect.Dx(), t.img.Rect.Dy()
}

// Texel returns the nearest texel to uv. Coordinates are clamped to the edge.
func (t *Texture) Texel(uv math.Vec2) color.NRGBA {
	x, y := t.pixel(uv)
	return t.img.NRGBAAt(x, y)
}

// Bilinear returns the filtered color at uv with channels in [0,1].
func (t *Texture) Bilinear(uv math.Vec2) [4]float32 {
	w, h := t.Size()
	fx := clamp01(uv.X)*float32(w) - 0.5
	fy := (1-clamp01(uv.Y))*float32(h) - 0.5

	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	c00 := t.at(x0, y0)
	c10 := t.at(x0+1, y0)
	c01 := t.at(x0, y0+1)
	c11 := t.at(x0+1, y0+1)

	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*tx
		bottom := c01[i] + (c11[i]-c01[i])*tx
		out[i] = top + (bottom-top)*ty
	}
	return out
}

func (t *Texture) at(x, y int) [4]float32 {
	w, h := t.Size()
	x = clampInt(x, 0, w-1)
	y = clampInt(y, 0, h-1)
	c := t.img.NRGBAAt(x, y)
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

func (t *Texture) pixel(uv math.Vec2) (int, int) {
	w, h := t.Size()
	x := int(clamp01(uv.X) * float32(w))
	y := int((1 - clamp01(uv.Y)) * float32(h))
	return clampInt(x, 0, w-1), clampInt(y, 0, h-1)
}

func clamp01(v float32) float32 {
	if v != v {
		return 0
	}
	return math32.Max(0, math32.Min(1, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
