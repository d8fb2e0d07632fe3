package icons

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Info describes a source image without decoding its pixels.
type Info struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Inspect reads the header of src.
func Inspect(src []byte) (Info, error) {
	if len(src) == 0 {
		return Info{}, &DecodeError{Reason: "empty input"}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return Info{}, decodeErr(err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, &DecodeError{Reason: "image has no pixels"}
	}

	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

func decode(src []byte, maxPixels int) (image.Image, error) {
	info, err := Inspect(src)
	if err != nil {
		return nil, err
	}

	if maxPixels > 0 && info.Width*info.Height > maxPixels {
		return nil, &DecodeError{Reason: "image exceeds the pixel limit"}
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, decodeErr(err)
	}

	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Reason: "image has no pixels"}
	}

	return img, nil
}

func decodeErr(err error) error {
	if errors.Is(err, image.ErrFormat) {
		return &DecodeError{Reason: "unrecognized image format", Err: err}
	}

	return &DecodeError{Reason: "corrupt or truncated image", Err: err}
}

// normalize copies img into a non-premultiplied RGBA grid anchored at the
// origin. Sources without alpha come out fully opaque.
func normalize(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return dst
}
