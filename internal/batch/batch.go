// Package batch is the local command line mode: one source file in, one PNG
// per icon size written to a directory.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/appicon/icon-generator/icons"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// FileName is the name each icon is written under.
func FileName(size icons.Size) string {
	return fmt.Sprintf("icon_%d.png", int(size))
}

// Generate reads input, writes every icon into outputDir and reports one
// progress line per file to progress.
func Generate(input string, outputDir string, progress io.Writer) ([]string, error) {
	raw, err := os.ReadFile(input)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed at read source %s", input), err)
	}

	out, err := icons.Generate(raw)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed at generate icons"), err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed at create output dir %s", outputDir), err)
	}

	written := make([]string, 0, len(out))
	err = out.Each(func(size icons.Size, data []byte) error {
		pth := filepath.Join(outputDir, FileName(size))
		if err := os.WriteFile(pth, data, 0644); err != nil {
			return multierr.Append(fmt.Errorf("failed at write %s", pth), err)
		}

		zap.S().Debugw("wrote icon",
			"path", pth,
			"size", int(size),
			"bytes", len(data),
		)
		fmt.Fprintf(progress, "generated icon: %s\n", pth)
		written = append(written, pth)

		return nil
	})
	if err != nil {
		return written, err
	}

	fmt.Fprintln(progress, "all icons generated")

	return written, nil
}
