package texture

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

// createTestTGA builds a TGA header followed by the given pixel payload.
func createTestTGA(imageType byte, width, height int, bpp byte, topToBottom bool, payload []byte) []byte {
	buf := new(bytes.Buffer)
	header := make([]byte, tgaHeaderSize)
	header[2] = imageType
	header[12] = byte(width)
	header[13] = byte(width >> 8)
	header[14] = byte(height)
	header[15] = byte(height >> 8)
	header[16] = bpp
	if topToBottom {
		header[17] = tgaDescriptorTopToBottom
	}
	buf.Write(header)
	buf.Write(payload)
	return buf.Bytes()
}

func TestDecodeTGA_UncompressedBGR(t *testing.T) {
	// 2x1, top-to-bottom: red, green (stored BGR)
	data := createTestTGA(TGATypeUncompressed, 2, 1, 24, true, []byte{0, 0, 255, 0, 255, 0})

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel 0 = %v, want red", got)
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("pixel 1 = %v, want green", got)
	}
}

func TestDecodeTGA_GrayBottomToTop(t *testing.T) {
	// 1x2 bottom-to-top: first stored row is the bottom one.
	data := createTestTGA(TGATypeGray, 1, 2, 8, false, []byte{10, 20})

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	if got := img.NRGBAAt(0, 1).R; got != 10 {
		t.Errorf("bottom pixel = %d, want 10", got)
	}
	if got := img.NRGBAAt(0, 0).R; got != 20 {
		t.Errorf("top pixel = %d, want 20", got)
	}
}

func TestDecodeTGA_RLE(t *testing.T) {
	// 3x1: run of 2 blue pixels, then one raw white pixel (BGRA).
	payload := []byte{
		0x81, 255, 0, 0, 255,
		0x00, 255, 255, 255, 128,
	}
	data := createTestTGA(TGATypeRLE, 3, 1, 32, true, payload)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	for x := 0; x < 2; x++ {
		if got := img.NRGBAAt(x, 0); got != (color.NRGBA{B: 255, A: 255}) {
			t.Errorf("pixel %d = %v, want blue", x, got)
		}
	}
	if got := img.NRGBAAt(2, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 128}) {
		t.Errorf("pixel 2 = %v, want translucent white", got)
	}
}

func TestDecodeTGA_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0, 0, 2}, ErrTruncatedTGA},
		{"truncated pixels", createTestTGA(TGATypeUncompressed, 2, 2, 24, false, []byte{1, 2, 3}), ErrTruncatedTGA},
		{"color mapped", func() []byte {
			d := createTestTGA(TGATypeUncompressed, 1, 1, 24, false, []byte{1, 2, 3})
			d[1] = 1
			return d
		}(), ErrUnsupportedTGA},
		{"bad depth", createTestTGA(TGATypeUncompressed, 1, 1, 16, false, []byte{1, 2}), ErrUnsupportedTGA},
		{"bad type", createTestTGA(1, 1, 1, 8, false, []byte{1}), ErrUnsupportedTGA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeTGA() error = %v, want %v", err, tt.want)
			}
		})
	}
}
