package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func Assert(t *testing.T, expected interface{}, actual interface{}, msg string) {
	t.Helper()

	require.Equal(t, expected, actual, msg)
}

func IsNil(t *testing.T, v interface{}, msg string) {
	t.Helper()

	if err, ok := v.(error); ok {
		require.NoError(t, err, msg)
		return
	}

	require.Nil(t, v, msg)
}

func ReadFile(t *testing.T, pth string) []byte {
	t.Helper()

	data, err := os.ReadFile(pth)
	require.NoError(t, err, "read %s", pth)

	return data
}

// Solid returns a w*h image filled with c.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	return img
}

func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	buf := bytes.Buffer{}
	require.NoError(t, png.Encode(&buf, img), "encode fixture")

	return buf.Bytes()
}

func DecodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "decode png")

	return img
}
