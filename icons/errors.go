package icons

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// DecodeError is returned when the source bytes are not a readable raster image.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}

	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ResampleError is returned when an image cannot be resampled, which only
// happens for degenerate dimensions.
type ResampleError struct {
	Width  int
	Height int
}

func (e *ResampleError) Error() string {
	return fmt.Sprintf("resample: degenerate source dimensions %dx%d", e.Width, e.Height)
}

// EncodeError is returned when a single variant could not be produced.
type EncodeError struct {
	Size Size
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Size, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// VariantErrors collects the per-variant failures of a partial generation.
type VariantErrors struct {
	Failed []*EncodeError
}

func (e *VariantErrors) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = f.Error()
	}

	return fmt.Sprintf("%d variant(s) failed: %s", len(e.Failed), strings.Join(parts, "; "))
}

// Sizes returns the sizes that failed, in ascending order.
func (e *VariantErrors) Sizes() []Size {
	sizes := make([]Size, len(e.Failed))
	for i, f := range e.Failed {
		sizes[i] = f.Size
	}

	return sizes
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *VariantErrors) Unwrap() []error {
	var err error
	for _, f := range e.Failed {
		err = multierr.Append(err, f)
	}

	return multierr.Errors(err)
}
