package icons

import (
	"image/png"

	"golang.org/x/image/draw"
)

type Rendering int32

const (
	_ Rendering = iota
	RenderingSpeed
	RenderingQuality
)

func (r Rendering) String() string {
	switch r {
	case RenderingSpeed:
		return "SPEED"
	case RenderingQuality:
		return "QUALITY"
	default:
		return "UNKNOWN"
	}
}

func (r Rendering) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Tier is the quality setting a variant is rendered with.
type Tier struct {
	Compression  float32   `json:"compression"`
	Antialiasing bool      `json:"antialiasing"`
	Rendering    Rendering `json:"rendering"`
}

// TierFor selects the tier for a target size. Anything at or below 256 is
// rendered for speed, larger sizes for quality.
func TierFor(size Size) Tier {
	switch {
	case size <= 64:
		return Tier{Compression: 0.85, Rendering: RenderingSpeed}
	case size <= 256:
		return Tier{Compression: 0.80, Rendering: RenderingSpeed}
	case size <= 512:
		return Tier{Compression: 0.75, Antialiasing: true, Rendering: RenderingQuality}
	default:
		return Tier{Compression: 0.70, Antialiasing: true, Rendering: RenderingQuality}
	}
}

func (t Tier) interpolator() draw.Interpolator {
	if t.Antialiasing {
		return draw.CatmullRom
	}

	return draw.ApproxBiLinear
}

// compressionLevel maps the compression quality onto a deflate level. Lower
// quality values mean more effort spent shrinking the output.
func (t Tier) compressionLevel() png.CompressionLevel {
	switch {
	case t.Compression >= 0.80:
		return png.BestSpeed
	case t.Compression >= 0.75:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}
