package icons

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// resampleBase stretches img to BaseSize on each axis independently.
// Non-square sources are not letterboxed or cropped.
func resampleBase(img *image.NRGBA) (*image.RGBA, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &ResampleError{Width: b.Dx(), Height: b.Dy()}
	}

	scaled := resize.Resize(BaseSize, BaseSize, img, resize.Lanczos3)

	base := image.NewRGBA(image.Rect(0, 0, BaseSize, BaseSize))
	draw.Draw(base, base.Bounds(), scaled, scaled.Bounds().Min, draw.Src)

	if minVisibleAlpha(img) >= fringeAlpha {
		clearFringe(base)
	}

	return base, nil
}

// fringeAlpha is the alpha below which base pixels count as Lanczos ringing
// next to hard transparent edges.
const fringeAlpha = 16

// minVisibleAlpha returns the smallest non-zero alpha in img, or 255 when
// every pixel is either fully transparent or fully opaque.
func minVisibleAlpha(img *image.NRGBA) uint8 {
	b := img.Bounds()
	min := uint8(255)

	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 3; i < len(row); i += 4 {
			if a := row[i]; a != 0 && a < min {
				min = a
			}
		}
	}

	return min
}

// clearFringe zeroes pixels whose alpha is below fringeAlpha. Only used when
// the source itself has no such faint pixels.
func clearFringe(base *image.RGBA) {
	for i := 0; i < len(base.Pix); i += 4 {
		if base.Pix[i+3] < fringeAlpha {
			base.Pix[i] = 0
			base.Pix[i+1] = 0
			base.Pix[i+2] = 0
			base.Pix[i+3] = 0
		}
	}
}

// renderVariant only reads base, so calls for different sizes may run at the same time.
func renderVariant(base *image.RGBA, size Size) (data []byte, err error) {
	defer func() {
		if pnk := recover(); pnk != nil {
			data = nil
			err = &EncodeError{Size: size, Err: fmt.Errorf("panic at runtime: %v", pnk)}
		}
	}()

	tier := TierFor(size)

	dst := image.NewRGBA(image.Rect(0, 0, int(size), int(size)))
	tier.interpolator().Scale(dst, dst.Bounds(), base, base.Bounds(), draw.Src, nil)

	buf := bytes.Buffer{}
	enc := png.Encoder{CompressionLevel: tier.compressionLevel()}

	if err := enc.Encode(&buf, alphaOutput{dst}); err != nil {
		return nil, &EncodeError{Size: size, Err: err}
	}

	return buf.Bytes(), nil
}

// alphaOutput keeps the PNG encoder on the RGBA color type even when every
// pixel is opaque.
type alphaOutput struct {
	*image.RGBA
}

func (alphaOutput) Opaque() bool {
	return false
}
