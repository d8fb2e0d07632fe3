package icons

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/appicon/icon-generator/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	t.Parallel()

	speed := func(q float32) Tier { return Tier{Compression: q, Rendering: RenderingSpeed} }
	quality := func(q float32) Tier { return Tier{Compression: q, Antialiasing: true, Rendering: RenderingQuality} }

	cases := map[Size]Tier{
		Size16:   speed(0.85),
		Size32:   speed(0.85),
		Size64:   speed(0.85),
		Size128:  speed(0.80),
		Size256:  speed(0.80),
		Size512:  quality(0.75),
		Size1024: quality(0.70),
	}

	for size, want := range cases {
		testutil.Assert(t, want, TierFor(size), "tier for "+size.String())
	}
}

func TestNormalizeOpaqueSource(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	for y := 5; y < 7; y++ {
		for x := 5; x < 8; x++ {
			src.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	out := normalize(src)
	testutil.Assert(t, image.Rect(0, 0, 3, 2), out.Bounds(), "moved to origin")
	testutil.Assert(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, out.NRGBAAt(2, 1), "pixel copied")

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	testutil.Assert(t, uint8(255), normalize(gray).NRGBAAt(1, 1).A, "no alpha means opaque")
}

func TestResampleBase(t *testing.T) {
	t.Parallel()

	base, err := resampleBase(testutil.Solid(3, 9, red))
	testutil.IsNil(t, err, "resample succeeds")
	testutil.Assert(t, image.Rect(0, 0, BaseSize, BaseSize), base.Bounds(), "base is square")

	_, err = resampleBase(image.NewNRGBA(image.Rect(0, 0, 0, 5)))
	var resampleErr *ResampleError
	assert.True(t, errors.As(err, &resampleErr), "zero width is a ResampleError")
}

func TestResampleBaseClearsFringe(t *testing.T) {
	t.Parallel()

	src := testutil.Solid(4, 4, transparent)
	for y := 0; y < 4; y++ {
		src.SetNRGBA(2, y, blue)
		src.SetNRGBA(3, y, blue)
	}

	base, err := resampleBase(src)
	testutil.IsNil(t, err, "resample succeeds")

	for y := 0; y < BaseSize; y += 64 {
		for _, x := range []int{0, 64, 200} {
			testutil.Assert(t, color.RGBA{}, base.RGBAAt(x, y), fmt.Sprintf("(%d,%d) stays transparent", x, y))
		}
		assert.Greater(t, base.RGBAAt(BaseSize-1, y).A, uint8(200), "right edge stays opaque")
	}
}

func TestResampleBaseKeepsFaintAlpha(t *testing.T) {
	t.Parallel()

	base, err := resampleBase(testutil.Solid(4, 4, color.NRGBA{R: 255, A: 5}))
	testutil.IsNil(t, err, "resample succeeds")

	assert.NotZero(t, base.RGBAAt(BaseSize/2, BaseSize/2).A, "faint source alpha survives")
}

func TestCollectPolicies(t *testing.T) {
	t.Parallel()

	results := make([]variant, 0, len(sizes))
	for _, size := range sizes {
		v := variant{size: size, data: []byte{byte(size)}}
		if size == Size256 || size == Size1024 {
			v = variant{size: size, err: fmt.Errorf("boom")}
		}
		results = append(results, v)
	}

	out, err := collect(results, FailurePolicyFailFast)
	assert.Nil(t, out, "fail fast drops every icon")
	var encodeErr *EncodeError
	assert.True(t, errors.As(err, &encodeErr), "EncodeError")
	testutil.Assert(t, Size256, encodeErr.Size, "smallest failing size is reported")

	out, err = collect(results, FailurePolicyPartial)
	var variantErrs *VariantErrors
	assert.True(t, errors.As(err, &variantErrs), "VariantErrors")
	testutil.Assert(t, []Size{Size256, Size1024}, variantErrs.Sizes(), "failed sizes")
	testutil.Assert(t, []Size{Size16, Size32, Size64, Size128, Size512}, out.Sizes(), "surviving sizes")
	assert.True(t, errors.As(err, &encodeErr), "individual failures are reachable")
}

func TestIconsEach(t *testing.T) {
	t.Parallel()

	in := Icons{Size1024: nil, Size16: nil, Size128: nil}

	var order []Size
	testutil.IsNil(t, in.Each(func(size Size, _ []byte) error {
		order = append(order, size)
		return nil
	}), "each succeeds")

	testutil.Assert(t, []Size{Size16, Size128, Size1024}, order, "ascending order")
	assert.False(t, Size(48).Valid(), "48 is not an icon size")
	assert.True(t, Size512.Valid(), "512 is an icon size")
}
