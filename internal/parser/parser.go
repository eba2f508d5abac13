// Package parser turns inspection files into workbooks.
package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
)

// Loader reads one file format into a Workbook.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt workbook.Options) (*workbook.Workbook, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// LoadFile selects a loader by filename and parses the file.
func LoadFile(path string, opt workbook.Options) (*workbook.Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

func init() {
	Register(xlsxLoader{})
	Register(csvLoader{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported workbook format")

func malformed(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, path, workbook.ErrMalformedWorkbook, err)
}
