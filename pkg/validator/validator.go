// Package validator parses uploaded JSON text and runs the registered row
// checks against every element of the root array.
package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bodrovis/json-upload-guard/internal/checks"
	"github.com/bodrovis/json-upload-guard/pkg/record"
)

var (
	ErrInvalidJSON      = errors.New("invalid JSON")
	ErrValidationFailed = errors.New("validation failed")
)

var utf8BOM = []byte("\uFEFF")

// RowError is the single error reported for one row.
type RowError struct {
	// Index is the 0-based position of the row in the array.
	Index   int
	Check   string
	Message string
}

type Summary struct {
	Records      []record.Row
	TotalRecords int
	RowErrors    []RowError
}

// Failed reports whether at least one row failed a check.
func (s Summary) Failed() bool { return len(s.RowErrors) > 0 }

func safeRun(c checks.Check, row record.Row) (res checks.Result) {
	defer func() {
		if r := recover(); r != nil {
			res.Name = c.Name()
			res.Status = checks.Error
			res.Message = fmt.Sprintf("check panicked: %v", r)
		}
	}()
	return c.Run(row)
}

// Validate parses text as a JSON array and checks every element. It returns
// ErrInvalidJSON (with an empty Summary) when the text is not a JSON array and
// ErrValidationFailed when one or more rows fail. Rows are never dropped from
// Summary.Records.
func Validate(text []byte) (Summary, error) {
	elems, err := parseArray(text)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	sum := Summary{
		Records:      make([]record.Row, 0, len(elems)),
		TotalRecords: len(elems),
	}

	ordered := checks.Sorted()
	for i, raw := range elems {
		row, err := record.Decode(raw)
		if err != nil {
			return Summary{}, fmt.Errorf("%w: element %d: %v", ErrInvalidJSON, i, err)
		}
		sum.Records = append(sum.Records, row)

		if res, ok := CheckRow(ordered, row); !ok {
			sum.RowErrors = append(sum.RowErrors, RowError{
				Index:   i,
				Check:   res.Name,
				Message: res.Message,
			})
		}
	}

	if sum.Failed() {
		return sum, ErrValidationFailed
	}
	return sum, nil
}

// CheckRow runs checks in order against row and returns the first non-PASS
// result. Checks after a fail-fast failure are skipped; otherwise every check
// still runs but an earlier failure keeps precedence.
func CheckRow(ordered []checks.Check, row record.Row) (checks.Result, bool) {
	var first checks.Result
	failed := false

	for _, c := range ordered {
		res := safeRun(c, row)
		if res.Status == checks.Pass {
			continue
		}
		if !failed {
			first = res
			failed = true
		}
		if c.FailFast() {
			break
		}
	}

	return first, !failed
}

func parseArray(text []byte) ([]json.RawMessage, error) {
	text = bytes.TrimPrefix(text, utf8BOM)

	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()

	var root json.RawMessage
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}

	root = bytes.TrimSpace(root)
	if len(root) == 0 || root[0] != '[' {
		return nil, errors.New("top-level value is not an array")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(root, &elems); err != nil {
		return nil, err
	}
	return elems, nil
}
