// Package archive packs generated icons into a reproducible zip file.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/appicon/icon-generator/icons"
	"go.uber.org/multierr"
	"golang.org/x/crypto/sha3"
)

const (
	FileName    = "icons.zip"
	ContentType = "application/octet-stream"
)

// modTime is the earliest timestamp the zip format can store. Every entry
// uses it so the same icons always produce the same bytes.
var modTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// EntryName is the file name of size inside the archive.
func EntryName(size icons.Size) string {
	return fmt.Sprintf("icon_%dx%d.png", int(size), int(size))
}

// Zip writes one entry per icon in ascending size order.
func Zip(in icons.Icons) ([]byte, error) {
	buf := bytes.Buffer{}
	zipWriter := zip.NewWriter(&buf)

	err := in.Each(func(size icons.Size, data []byte) error {
		f, err := zipWriter.CreateHeader(&zip.FileHeader{
			Name:     EntryName(size),
			Method:   zip.Deflate,
			Modified: modTime,
		})
		if err != nil {
			return multierr.Append(fmt.Errorf("failed at create entry %s", EntryName(size)), err)
		}

		if _, err := f.Write(data); err != nil {
			return multierr.Append(fmt.Errorf("failed at write entry %s", EntryName(size)), err)
		}

		return nil
	})
	if err != nil {
		return nil, multierr.Append(err, zipWriter.Close())
	}

	if err := zipWriter.Close(); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed at close zip"), err)
	}

	return buf.Bytes(), nil
}

// Digest is the hex SHA3-256 of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)

	return hex.EncodeToString(sum[:])
}
