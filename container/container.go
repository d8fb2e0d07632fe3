package container

import (
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
)

var TypeAvif = types.NewType("avif", "image/avif")

var (
	MimePNG = matchers.TypePng.MIME.Value
	MimeZIP = matchers.TypeZip.MIME.Value
)

func init() {
	filetype.AddMatcher(TypeAvif, func(data []byte) bool {
		if len(data) < 12 {
			return false
		}

		return data[0] == 0x00 &&
			data[1] == 0x00 &&
			data[4] == 'f' &&
			data[5] == 't' &&
			data[6] == 'y' &&
			data[7] == 'p' &&
			data[8] == 'a' &&
			data[9] == 'v' &&
			data[10] == 'i' &&
			(data[11] == 's' || data[11] == 'f' || data[11] == 'o')
	})
}

// Sources are the containers the icon pipeline can decode.
var Sources = []types.Type{
	matchers.TypePng,
	matchers.TypeJpeg,
	matchers.TypeGif,
	matchers.TypeWebp,
	matchers.TypeBmp,
	matchers.TypeTiff,
}

func Match(data []byte) types.Type {
	t, _ := filetype.Match(data)

	return t
}

// IsImage reports whether t is any image container, decodable or not.
func IsImage(t types.Type) bool {
	return t.MIME.Type == "image"
}

func Supported(t types.Type) bool {
	for _, s := range Sources {
		if s == t {
			return true
		}
	}

	return false
}
