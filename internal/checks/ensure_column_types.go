package checks

import (
	"fmt"

	"github.com/bodrovis/json-upload-guard/pkg/record"
)

type ensureColumnTypes struct{}

func (ensureColumnTypes) Name() string   { return "ensure-column-types" }
func (ensureColumnTypes) FailFast() bool { return true }
func (ensureColumnTypes) Priority() int  { return 2 }

// columnKinds pairs each required column with its expected JSON type, in the
// order mismatches are reported.
var columnKinds = []struct {
	column string
	kind   record.Kind
}{
	{"id", record.KindNumber},
	{"name", record.KindString},
	{"status", record.KindString},
}

func (ensureColumnTypes) Run(row record.Row) Result {
	const checkName = "ensure-column-types"

	for _, ck := range columnKinds {
		if row.Kind(ck.column) != ck.kind {
			return Result{
				Name:    checkName,
				Status:  Fail,
				Message: fmt.Sprintf("Invalid type for column: %s", ck.column),
			}
		}
	}

	return Result{Name: checkName, Status: Pass, Message: "Column types OK"}
}

func init() { Register(ensureColumnTypes{}) }
