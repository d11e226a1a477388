package checks

import (
	"fmt"
	"slices"

	"github.com/bodrovis/json-upload-guard/pkg/record"
)

type ensureStatusValue struct{}

func (ensureStatusValue) Name() string   { return "ensure-status-value" }
func (ensureStatusValue) FailFast() bool { return false }
func (ensureStatusValue) Priority() int  { return 3 }

func (ensureStatusValue) Run(row record.Row) Result {
	const checkName = "ensure-status-value"

	status, ok := row.StringValue("status")
	if ok && slices.Contains(ValidStatuses, status) {
		return Result{Name: checkName, Status: Pass, Message: "Status value OK: " + status}
	}

	return Result{
		Name:    checkName,
		Status:  Fail,
		Message: fmt.Sprintf("Invalid status value: %s", row.Display("status")),
	}
}

func init() { Register(ensureStatusValue{}) }
