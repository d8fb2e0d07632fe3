package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/appicon/icon-generator/icons"
	"github.com/appicon/icon-generator/internal/testutil"
)

func TestZip(t *testing.T) {
	t.Parallel()

	in := icons.Icons{
		icons.Size1024: []byte("large"),
		icons.Size16:   []byte("small"),
		icons.Size256:  []byte("medium"),
	}

	data, err := Zip(in)
	testutil.IsNil(t, err, "zip succeeds")

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	testutil.IsNil(t, err, "archive is readable")

	names := []string{}
	for _, f := range r.File {
		names = append(names, f.Name)

		rc, err := f.Open()
		testutil.IsNil(t, err, "open "+f.Name)
		body, err := io.ReadAll(rc)
		testutil.IsNil(t, err, "read "+f.Name)
		_ = rc.Close()

		switch f.Name {
		case "icon_16x16.png":
			testutil.Assert(t, "small", string(body), "16 entry")
		case "icon_256x256.png":
			testutil.Assert(t, "medium", string(body), "256 entry")
		case "icon_1024x1024.png":
			testutil.Assert(t, "large", string(body), "1024 entry")
		}
	}

	testutil.Assert(t, []string{"icon_16x16.png", "icon_256x256.png", "icon_1024x1024.png"}, names, "entries in size order")
}

func TestZipReproducible(t *testing.T) {
	t.Parallel()

	in := icons.Icons{icons.Size32: []byte("a"), icons.Size64: []byte("b")}

	first, err := Zip(in)
	testutil.IsNil(t, err, "first zip")

	second, err := Zip(in)
	testutil.IsNil(t, err, "second zip")

	testutil.Assert(t, first, second, "identical archives")
	testutil.Assert(t, Digest(first), Digest(second), "identical digests")
	testutil.Assert(t, 64, len(Digest(first)), "sha3-256 hex length")
}
