package checks

import (
	"fmt"

	"github.com/bodrovis/json-upload-guard/pkg/record"
)

type ensureRequiredColumns struct{}

func (ensureRequiredColumns) Name() string   { return "ensure-required-columns" }
func (ensureRequiredColumns) FailFast() bool { return true }
func (ensureRequiredColumns) Priority() int  { return 1 }

func (ensureRequiredColumns) Run(row record.Row) Result {
	const checkName = "ensure-required-columns"

	for _, col := range RequiredColumns {
		if !row.Has(col) {
			return Result{
				Name:    checkName,
				Status:  Fail,
				Message: fmt.Sprintf("Missing required column: %s", col),
			}
		}
	}

	return Result{Name: checkName, Status: Pass, Message: "All required columns present"}
}

func init() { Register(ensureRequiredColumns{}) }
