// Package icons turns one source image into the fixed set of square PNG app
// icons. Every call is independent; nothing is cached between calls and the
// package never logs.
package icons

import (
	"image"
	"sync"
	"time"
)

// FailurePolicy decides what happens when some variants fail to encode.
type FailurePolicy int32

const (
	// FailurePolicyFailFast drops every icon and returns the failure of the
	// smallest failing size.
	FailurePolicyFailFast FailurePolicy = iota
	// FailurePolicyPartial returns the icons that succeeded together with a
	// *VariantErrors listing the rest.
	FailurePolicyPartial
)

type Stage string

const (
	StageDecode    Stage = "decode"
	StageNormalize Stage = "normalize"
	StageBase      Stage = "base"
	StageVariants  Stage = "variants"
	StageCollect   Stage = "collect"
)

type Options struct {
	Policy FailurePolicy
	// Sequential renders variants one after another instead of in parallel.
	Sequential bool
	// MaxPixels rejects sources whose width*height is larger. Zero disables the check.
	MaxPixels int
	// Observe, if set, is called after each stage with its duration.
	Observe func(stage Stage, d time.Duration)
}

// Generate produces every icon size from src, aborting on the first failure.
func Generate(src []byte) (Icons, error) {
	return GenerateWith(src, Options{})
}

func GenerateWith(src []byte, opts Options) (Icons, error) {
	done := opts.stage(StageDecode)
	img, err := decode(src, opts.MaxPixels)
	if err != nil {
		return nil, err
	}
	done()

	done = opts.stage(StageNormalize)
	normalized := normalize(img)
	done()

	done = opts.stage(StageBase)
	base, err := resampleBase(normalized)
	if err != nil {
		return nil, err
	}
	done()

	done = opts.stage(StageVariants)
	results := renderAll(base, opts.Sequential)
	done()

	done = opts.stage(StageCollect)
	defer done()

	return collect(results, opts.Policy)
}

type variant struct {
	size Size
	data []byte
	err  error
}

// renderAll fills one slot per size; the slots are only read after every
// goroutine has finished.
func renderAll(base *image.RGBA, sequential bool) []variant {
	results := make([]variant, len(sizes))

	if sequential {
		for i, size := range sizes {
			data, err := renderVariant(base, size)
			results[i] = variant{size: size, data: data, err: err}
		}

		return results
	}

	wg := sync.WaitGroup{}
	for i, size := range sizes {
		wg.Add(1)
		go func(i int, size Size) {
			defer wg.Done()

			data, err := renderVariant(base, size)
			results[i] = variant{size: size, data: data, err: err}
		}(i, size)
	}

	wg.Wait()

	return results
}

func collect(results []variant, policy FailurePolicy) (Icons, error) {
	out := make(Icons, len(results))
	failed := &VariantErrors{}

	for _, r := range results {
		if r.err != nil {
			failed.Failed = append(failed.Failed, asEncodeError(r.size, r.err))
			continue
		}

		out[r.size] = r.data
	}

	if len(failed.Failed) == 0 {
		return out, nil
	}

	if policy == FailurePolicyPartial {
		return out, failed
	}

	return nil, failed.Failed[0]
}

func asEncodeError(size Size, err error) *EncodeError {
	if e, ok := err.(*EncodeError); ok {
		return e
	}

	return &EncodeError{Size: size, Err: err}
}

func (o Options) stage(s Stage) func() {
	if o.Observe == nil {
		return func() {}
	}

	start := time.Now()

	return func() {
		o.Observe(s, time.Since(start))
	}
}
