package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// quadrantImage returns a 2x2 image: top-left red, top-right green,
// bottom-left blue, bottom-right white.
func quadrantImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

func TestTexel(t *testing.T) {
	tex := New(quadrantImage())

	tests := []struct {
		uv   math.Vec2
		want color.NRGBA
	}{
		{math.Vec2{X: 0.25, Y: 0.75}, color.NRGBA{R: 255, A: 255}},
		{math.Vec2{X: 0.75, Y: 0.75}, color.NRGBA{G: 255, A: 255}},
		{math.Vec2{X: 0.25, Y: 0.25}, color.NRGBA{B: 255, A: 255}},
		{math.Vec2{X: 0.75, Y: 0.25}, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{math.Vec2{X: 1, Y: 0}, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{math.Vec2{X: -3, Y: 7}, color.NRGBA{R: 255, A: 255}},
	}

	for _, tt := range tests {
		if got := tex.Texel(tt.uv); got != tt.want {
			t.Errorf("Texel(%v) = %v, want %v", tt.uv, got, tt.want)
		}
	}
}

func TestBilinearCenter(t *testing.T) {
	tex := New(quadrantImage())
	got := tex.Bilinear(math.Vec2{X: 0.5, Y: 0.5})
	want := [4]float32{0.5, 0.5, 0.5, 1}
	for i := range want {
		if d := got[i] - want[i]; d > 1e-5 || d < -1e-5 {
			t.Errorf("channel %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, quadrantImage()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	tex, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if w, h := tex.Size(); w != 2 || h != 2 {
		t.Errorf("Size() = %dx%d, want 2x2", w, h)
	}
	if got := tex.Texel(math.Vec2{X: 0.75, Y: 0.75}); got.G != 255 {
		t.Errorf("unexpected texel %v", got)
	}
}

func TestLoadTGA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.tga")
	data := createTestTGA(TGATypeGray, 2, 1, 8, true, []byte{3, 7})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tex, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := tex.Texel(math.Vec2{X: 0.9, Y: 0.5}).R; got != 7 {
		t.Errorf("right texel = %d, want 7", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for undecodable file")
	}
}
