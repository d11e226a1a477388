package source

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/bodrovis/json-upload-guard/pkg/uploader"
)

const DefaultChunkSize = 32 * 1024

// Reader reads files in fixed-size steps, reporting progress after each step
// when the file size is known.
type Reader struct {
	ChunkSize int
}

func NewReader(chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader{ChunkSize: chunkSize}
}

// ReadAsText returns the whole content of f decoded as UTF-8. A leading BOM is
// dropped and every invalid byte becomes one U+FFFD. Cancelling ctx aborts the
// read with ctx's error.
func (r *Reader) ReadAsText(ctx context.Context, f uploader.File, progress uploader.ProgressFunc) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	total := f.Size()
	chunk := r.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	var sb strings.Builder
	if total > 0 {
		sb.Grow(int(total))
	}

	buf := make([]byte, chunk)
	var loaded int64
	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name(), err)
		}

		n, readErr := rc.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
			loaded += int64(n)
			if total > 0 && progress != nil {
				progress(Percent(loaded, total))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("read %s: %w", f.Name(), readErr)
		}
	}

	text, _, err := transform.String(unicode.BOMOverride(unicode.UTF8.NewDecoder()), sb.String())
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", f.Name(), err)
	}
	return text, nil
}

// Percent is round(loaded/total*100) clamped to [0,100]. It returns 0 when
// total is not positive.
func Percent(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(loaded) / float64(total) * 100))
	return max(0, min(100, p))
}
