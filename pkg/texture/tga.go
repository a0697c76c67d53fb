package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed      = 2  // Uncompressed true-color
	TGATypeGray              = 3  // Uncompressed grayscale
	TGATypeRLE               = 10 // RLE compressed true-color
	TGATypeRLEGray           = 11 // RLE compressed grayscale
	tgaHeaderSize            = 18
	tgaDescriptorTopToBottom = 0x20
)

// TGA decoding errors.
var (
	ErrTruncatedTGA   = errors.New("truncated TGA data")
	ErrUnsupportedTGA = errors.New("unsupported TGA format")
)

// DecodeTGA decodes a TGA image.
// Supports uncompressed and RLE true-color (24/32 bpp) and grayscale (8 bpp)
// images, which covers the usual exports of painted cluster-ID maps.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTruncatedTGA
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrUnsupportedTGA)
	}
	gray := imageType == TGATypeGray || imageType == TGATypeRLEGray
	switch imageType {
	case TGATypeUncompressed, TGATypeRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("%w: %d bpp true-color", ErrUnsupportedTGA, bpp)
		}
	case TGATypeGray, TGATypeRLEGray:
		if bpp != 8 {
			return nil, fmt.Errorf("%w: %d bpp grayscale", ErrUnsupportedTGA, bpp)
		}
	default:
		return nil, fmt.Errorf("%w: type %d", ErrUnsupportedTGA, imageType)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrUnsupportedTGA, width, height)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, ErrTruncatedTGA
	}

	d := tgaDecoder{
		img:         image.NewNRGBA(image.Rect(0, 0, width, height)),
		pix:         data[offset:],
		width:       width,
		height:      height,
		bpp:         bpp / 8,
		gray:        gray,
		topToBottom: descriptor&tgaDescriptorTopToBottom != 0,
	}

	var err error
	if imageType == TGATypeRLE || imageType == TGATypeRLEGray {
		err = d.decodeRLE()
	} else {
		err = d.decodeRaw()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.NRGBA
	pix         []byte
	pos         int
	width       int
	height      int
	bpp         int
	gray        bool
	topToBottom bool
}

func (d *tgaDecoder) readPixel() (color.NRGBA, bool) {
	if d.pos+d.bpp > len(d.pix) {
		return color.NRGBA{}, false
	}
	p := d.pix[d.pos : d.pos+d.bpp]
	d.pos += d.bpp
	if d.gray {
		return color.NRGBA{R: p[0], G: p[0], B: p[0], A: 255}, true
	}
	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bpp == 4 {
		c.A = p[3]
	}
	return c, true
}

func (d *tgaDecoder) set(index int, c color.NRGBA) {
	x := index % d.width
	y := index / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRaw() error {
	count := d.width * d.height
	for i := 0; i < count; i++ {
		c, ok := d.readPixel()
		if !ok {
			return fmt.Errorf("%w: pixel %d", ErrTruncatedTGA, i)
		}
		d.set(i, c)
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	count := d.width * d.height
	i := 0
	for i < count {
		if d.pos >= len(d.pix) {
			return fmt.Errorf("%w: packet at pixel %d", ErrTruncatedTGA, i)
		}
		packet := d.pix[d.pos]
		d.pos++
		run := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, ok := d.readPixel()
			if !ok {
				return fmt.Errorf("%w: run at pixel %d", ErrTruncatedTGA, i)
			}
			for k := 0; k < run && i < count; k++ {
				d.set(i, c)
				i++
			}
			continue
		}

		for k := 0; k < run && i < count; k++ {
			c, ok := d.readPixel()
			if !ok {
				return fmt.Errorf("%w: raw packet at pixel %d", ErrTruncatedTGA, i)
			}
			d.set(i, c)
			i++
		}
	}
	return nil
}
