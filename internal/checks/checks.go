// Package checks holds the per-row checks run against every element of an
// uploaded array. Checks register themselves at init and run in priority order;
// the first non-PASS result decides the message reported for the row.
package checks

import (
	"sort"

	"github.com/bodrovis/json-upload-guard/pkg/record"
)

type Status string

const (
	Pass  Status = "PASS"
	Fail  Status = "FAIL"
	Error Status = "ERROR"
)

type Result struct {
	Name    string
	Status  Status
	Message string
}

type Check interface {
	Name() string
	Run(row record.Row) Result
	// If true, skip the remaining checks for this row on non-PASS result.
	FailFast() bool
	// Less number -> higher priority
	Priority() int
}

// Global registry of checks.
var All []Check

func Register(c Check) {
	All = append(All, c)
}

func Sorted() []Check {
	out := make([]Check, len(All))
	copy(out, All)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Priority(), out[j].Priority()
		if pi != pj {
			return pi < pj
		}

		return out[i].Name() < out[j].Name()
	})
	return out
}

func Reset() {
	All = nil
}

// RequiredColumns lists the columns every row must carry, in reporting order.
var RequiredColumns = []string{"id", "name", "status"}

// ValidStatuses is the closed set of accepted status values.
var ValidStatuses = []string{"active", "inactive", "pending"}
