package uploader

import (
	"context"
	"io"
)

// AlertOptions describes a modal alert opened through the host Dialog.
type AlertOptions struct {
	Title        string
	DisableClose bool
	Message      string
	CloseButton  string
}

// Dialog opens modal alerts in the host UI.
type Dialog interface {
	OpenAlert(opts AlertOptions)
}

// Translator resolves a localization key, interpolating params when given.
type Translator interface {
	Instant(key string, params map[string]any) string
}

// DialogRef is the handle of the host dialog that started the upload flow.
type DialogRef interface {
	Close()
}

// File is a user-selected file.
type File interface {
	Name() string
	// Type is the declared content type, e.g. "application/json".
	Type() string
	// Size is the total byte length, or a value <= 0 when unknown.
	Size() int64
	Open() (io.ReadCloser, error)
}

// ProgressFunc receives the read progress as a percentage in [0,100].
type ProgressFunc func(percent int)

// Reader reads a whole file as text. It may call progress any number of
// times before returning.
type Reader interface {
	ReadAsText(ctx context.Context, f File, progress ProgressFunc) (string, error)
}

// Translation keys used by the Uploader.
const (
	KeyProblem           = "THERE_WAS_A_PROBLEM"
	KeyUnsupportedFormat = "UNSUPPORTED_FILE_FORMAT"
	KeyClose             = "CLOSE"
	KeyInvalidJSON       = "UPLOAD_JSON.INVALID_JSON"
	KeyErrorInItem       = "UPLOAD_JSON.ERROR_IN_ITEM"
)
