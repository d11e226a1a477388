// Package accept decides whether a selected file may be read at all.
package accept

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

var (
	SupportedTypes      = []string{"application/json"}
	SupportedExtensions = []string{"json"}
)

// File is the part of a selected file the gate looks at.
type File interface {
	Name() string
	Type() string
}

// Extension returns the text after the last '.' of name, or name itself when
// it has no dot. The result is not case-folded.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name
	}
	return name[i+1:]
}

// Accept returns nil only when both the declared content type and the file
// extension are supported.
func Accept(f File) error {
	typ := f.Type()
	if !slices.Contains(SupportedTypes, typ) {
		if typ == "" {
			typ = "(none)"
		}
		return fmt.Errorf("%w: content type %s (expected %s)", ErrUnsupportedFormat, typ, strings.Join(SupportedTypes, ", "))
	}

	ext := Extension(f.Name())
	if !slices.Contains(SupportedExtensions, ext) {
		if ext == "" {
			ext = "(none)"
		}
		return fmt.Errorf("%w: extension %s (expected %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions, ", "))
	}

	return nil
}
