package uploader

import (
	"github.com/bodrovis/json-upload-guard/pkg/record"
)

// UploadState is what the host UI polls while and after a file is processed.
type UploadState struct {
	Failed          bool         `json:"failed" yaml:"failed"`
	ErrorText       string       `json:"errorText" yaml:"errorText"`
	Records         []record.Row `json:"records" yaml:"records"`
	TotalRecords    int          `json:"totalRecords" yaml:"totalRecords"`
	ProgressPercent int          `json:"progressPercent" yaml:"progressPercent"`
}

func newState() UploadState {
	return UploadState{Records: []record.Row{}}
}

func (s UploadState) clone() UploadState {
	out := s
	out.Records = make([]record.Row, len(s.Records))
	copy(out.Records, s.Records)
	return out
}

// Outcome is the terminal transition of one upload attempt.
type Outcome int

const (
	// Rejected: the file never got read.
	Rejected Outcome = iota
	// Loaded: the file was read and went through parse and validation.
	Loaded
	// Errored: the read itself failed.
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Result is delivered exactly once per UploadFile call. Err is nil for a
// Loaded attempt whose rows all passed.
type Result struct {
	Outcome Outcome
	Err     error
}
