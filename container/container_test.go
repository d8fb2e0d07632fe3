package container

import (
	"bytes"
	"image/color"
	"image/gif"
	"image/jpeg"
	"testing"

	"github.com/appicon/icon-generator/archive"
	"github.com/appicon/icon-generator/icons"
	"github.com/appicon/icon-generator/internal/testutil"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
	"golang.org/x/image/bmp"
)

type testCase struct {
	Name          string
	Data          []byte
	ExpectedType  types.Type
	ExpectedImage bool
	Supported     bool
}

func TestMatch(t *testing.T) {
	t.Parallel()

	img := testutil.Solid(4, 4, color.NRGBA{G: 255, A: 255})

	jpg := bytes.Buffer{}
	testutil.IsNil(t, jpeg.Encode(&jpg, img, nil), "jpeg fixture")

	gf := bytes.Buffer{}
	testutil.IsNil(t, gif.Encode(&gf, img, nil), "gif fixture")

	bm := bytes.Buffer{}
	testutil.IsNil(t, bmp.Encode(&bm, img), "bmp fixture")

	zipped, err := archive.Zip(icons.Icons{icons.Size16: []byte("x")})
	testutil.IsNil(t, err, "zip fixture")

	avif := []byte{0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'a', 'v', 'i', 'f', 0, 0, 0, 0}

	cases := []testCase{
		{"png", testutil.EncodePNG(t, img), matchers.TypePng, true, true},
		{"jpeg", jpg.Bytes(), matchers.TypeJpeg, true, true},
		{"gif", gf.Bytes(), matchers.TypeGif, true, true},
		{"bmp", bm.Bytes(), matchers.TypeBmp, true, true},
		{"avif", avif, TypeAvif, true, false},
		{"zip", zipped, matchers.TypeZip, false, false},
		{"text", []byte("hello world"), types.Unknown, false, false},
	}

	for _, c := range cases {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			t.Parallel()

			match := Match(c.Data)
			testutil.Assert(t, c.ExpectedType, match, "type of "+c.Name)
			testutil.Assert(t, c.ExpectedImage, IsImage(match), "is image "+c.Name)
			testutil.Assert(t, c.Supported, Supported(match), "supported "+c.Name)
		})
	}
}
