package icons

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/appicon/icon-generator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red         = color.NRGBA{R: 255, A: 255}
	blue        = color.NRGBA{B: 255, A: 255}
	transparent = color.NRGBA{}
)

func assertSquareAlphaPNGs(t *testing.T, out Icons) {
	t.Helper()

	testutil.Assert(t, Sizes(), out.Sizes(), "every size is present")

	for _, size := range Sizes() {
		img := testutil.DecodePNG(t, out[size])
		testutil.Assert(t, image.Rect(0, 0, int(size), int(size)), img.Bounds(), "bounds of "+size.String())
		_, ok := img.(*image.NRGBA)
		assert.True(t, ok, "%s decodes to NRGBA, got %T", size, img)
	}
}

func TestGenerateRedSquare(t *testing.T) {
	t.Parallel()

	out, err := Generate(testutil.EncodePNG(t, testutil.Solid(10, 10, red)))
	testutil.IsNil(t, err, "generate succeeds")

	assertSquareAlphaPNGs(t, out)

	img := testutil.DecodePNG(t, out[Size512]).(*image.NRGBA)

	reds, total := 0, 0
	for y := 0; y < 512; y += 8 {
		for x := 0; x < 512; x += 8 {
			c := img.NRGBAAt(x, y)
			if c.R > 200 && c.G < 50 && c.B < 50 && c.A > 200 {
				reds++
			}
			total++
		}
	}
	assert.Greater(t, reds, total*9/10, "512 icon is predominantly red")

	assert.Less(t, len(out[Size64]), len(out[Size1024]), "64 icon is smaller than 1024 icon")
}

func TestGenerateKeepsTransparency(t *testing.T) {
	t.Parallel()

	src := testutil.Solid(32, 32, transparent)
	for y := 0; y < 32; y++ {
		for x := 16; x < 32; x++ {
			src.SetNRGBA(x, y, blue)
		}
	}

	out, err := Generate(testutil.EncodePNG(t, src))
	testutil.IsNil(t, err, "generate succeeds")

	assertSquareAlphaPNGs(t, out)

	for _, size := range Sizes() {
		img := testutil.DecodePNG(t, out[size]).(*image.NRGBA)
		s := int(size)

		testutil.Assert(t, uint8(0), img.NRGBAAt(0, s/2).A, "left edge of "+size.String()+" is transparent")
		assert.GreaterOrEqual(t, img.NRGBAAt(s-1, s/2).A, uint8(250), "right edge of %s is opaque", size)
	}
}

func TestGenerateHardEdgeUpscale(t *testing.T) {
	t.Parallel()

	src := testutil.Solid(4, 4, transparent)
	for y := 0; y < 4; y++ {
		src.SetNRGBA(2, y, red)
		src.SetNRGBA(3, y, red)
	}

	out, err := Generate(testutil.EncodePNG(t, src))
	testutil.IsNil(t, err, "generate succeeds")

	for _, size := range Sizes() {
		img := testutil.DecodePNG(t, out[size]).(*image.NRGBA)
		s := int(size)

		for y := 0; y < s; y++ {
			testutil.Assert(t, uint8(0), img.NRGBAAt(0, y).A, "left edge of "+size.String()+" has no halo")
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	src := testutil.Solid(40, 24, transparent)
	for y := 4; y < 20; y++ {
		for x := 4; x < 36; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 10), B: 90, A: uint8(128 + x)})
		}
	}
	data := testutil.EncodePNG(t, src)

	first, err := Generate(data)
	testutil.IsNil(t, err, "first run")

	second, err := Generate(data)
	testutil.IsNil(t, err, "second run")

	sequential, err := GenerateWith(data, Options{Sequential: true})
	testutil.IsNil(t, err, "sequential run")

	for _, size := range Sizes() {
		assert.True(t, bytes.Equal(first[size], second[size]), "%s identical across runs", size)
		assert.True(t, bytes.Equal(first[size], sequential[size]), "%s identical when sequential", size)
	}
}

func TestGenerateBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		w, h int
	}{
		{"one pixel", 1, 1},
		{"wide", 2000, 500},
		{"tall", 30, 300},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			out, err := Generate(testutil.EncodePNG(t, testutil.Solid(c.w, c.h, blue)))
			testutil.IsNil(t, err, "generate succeeds")

			assertSquareAlphaPNGs(t, out)
		})
	}
}

func TestGenerateOpaqueJPEG(t *testing.T) {
	t.Parallel()

	buf := bytes.Buffer{}
	require.NoError(t, jpeg.Encode(&buf, testutil.Solid(64, 48, red), &jpeg.Options{Quality: 90}))

	out, err := Generate(buf.Bytes())
	testutil.IsNil(t, err, "generate succeeds")

	assertSquareAlphaPNGs(t, out)

	img := testutil.DecodePNG(t, out[Size128]).(*image.NRGBA)
	testutil.Assert(t, uint8(255), img.NRGBAAt(64, 64).A, "jpeg source is opaque")
}

func TestGenerateDecodeErrors(t *testing.T) {
	t.Parallel()

	valid := testutil.EncodePNG(t, testutil.Solid(10, 10, red))

	cases := map[string][]byte{
		"empty":     {},
		"nil":       nil,
		"garbage":   []byte("definitely not an image"),
		"truncated": valid[:len(valid)/2],
		"header":    valid[:8],
	}

	for name, data := range cases {
		data := data
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := Generate(data)
			assert.Nil(t, out, "no icons")

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr), "DecodeError, got %v", err)
		})
	}
}

func TestGenerateMaxPixels(t *testing.T) {
	t.Parallel()

	_, err := GenerateWith(testutil.EncodePNG(t, testutil.Solid(20, 20, red)), Options{MaxPixels: 399})

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr), "over the limit is a DecodeError")
}

func TestGenerateObserveStages(t *testing.T) {
	t.Parallel()

	var seen []Stage
	_, err := GenerateWith(testutil.EncodePNG(t, testutil.Solid(4, 4, red)), Options{
		Observe: func(stage Stage, d time.Duration) {
			seen = append(seen, stage)
		},
	})
	testutil.IsNil(t, err, "generate succeeds")

	testutil.Assert(t, []Stage{StageDecode, StageNormalize, StageBase, StageVariants, StageCollect}, seen, "stages in order")
}

func TestInspect(t *testing.T) {
	t.Parallel()

	info, err := Inspect(testutil.EncodePNG(t, testutil.Solid(7, 3, red)))
	testutil.IsNil(t, err, "inspect succeeds")
	testutil.Assert(t, Info{Format: "png", Width: 7, Height: 3}, info, "header info")

	_, err = Inspect(nil)
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr), "empty input")
}
