// Package uploader accepts a user-selected JSON file, reads it, and validates
// its rows, reporting the outcome to the host UI through injected
// collaborators.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/bodrovis/json-upload-guard/internal/accept"
	"github.com/bodrovis/json-upload-guard/internal/logging"
	"github.com/bodrovis/json-upload-guard/pkg/record"
	"github.com/bodrovis/json-upload-guard/pkg/validator"
)

var (
	ErrReadFailed       = errors.New("file read failed")
	ErrUploadInProgress = errors.New("upload already in progress")
)

type Uploader struct {
	dialog     Dialog
	translator Translator
	dialogRef  DialogRef
	reader     Reader
	logger     *slog.Logger

	inFlight atomic.Bool

	mu    sync.Mutex
	state UploadState
	file  File
}

type Option func(*Uploader)

func WithLogger(l *slog.Logger) Option {
	return func(u *Uploader) {
		if l != nil {
			u.logger = l
		}
	}
}

func New(dialog Dialog, translator Translator, dialogRef DialogRef, reader Reader, opts ...Option) *Uploader {
	u := &Uploader{
		dialog:     dialog,
		translator: translator,
		dialogRef:  dialogRef,
		reader:     reader,
		logger:     slog.Default(),
		state:      newState(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// State returns a snapshot of the upload state.
func (u *Uploader) State() UploadState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.clone()
}

// File returns the last accepted file, or nil.
func (u *Uploader) File() File {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.file
}

// UploadFile runs one upload attempt. Rejection is decided before it returns;
// the read and validation continue in the background. The returned channel
// receives exactly one Result and is then closed.
//
// Only one attempt may be in flight per Uploader; a concurrent call is
// Rejected with ErrUploadInProgress and leaves the state untouched.
func (u *Uploader) UploadFile(ctx context.Context, f File) <-chan Result {
	done := make(chan Result, 1)

	if !u.inFlight.CompareAndSwap(false, true) {
		done <- Result{Outcome: Rejected, Err: ErrUploadInProgress}
		close(done)
		return done
	}

	log := logging.WithFields(u.logger, "attempt_id", uuid.NewString(), "file", f.Name())

	if err := accept.Accept(f); err != nil {
		log.Warn("file rejected", "type", f.Type(), "error", err)
		u.openAlert(u.translator.Instant(KeyUnsupportedFormat, map[string]any{
			"supportedExtensions": strings.Join(accept.SupportedExtensions, ","),
		}))
		u.dialogRef.Close()

		u.inFlight.Store(false)
		done <- Result{Outcome: Rejected, Err: err}
		close(done)
		return done
	}

	u.mu.Lock()
	u.file = f
	u.state = newState()
	u.mu.Unlock()

	log.Info("file accepted", "size", f.Size())

	go func() {
		defer close(done)
		defer u.inFlight.Store(false)
		done <- u.read(ctx, f, log)
	}()

	return done
}

func (u *Uploader) read(ctx context.Context, f File, log *slog.Logger) Result {
	text, err := u.reader.ReadAsText(ctx, f, func(percent int) {
		u.setProgress(percent)
		log.Debug("read progress", "percent", percent)
	})
	if err != nil {
		log.Error("file read failed", "error", err)

		u.mu.Lock()
		u.state.Failed = true
		u.mu.Unlock()

		u.openAlert(err.Error())
		u.dialogRef.Close()
		return Result{Outcome: Errored, Err: fmt.Errorf("%w: %v", ErrReadFailed, err)}
	}

	log.Info("file loaded", "bytes", len(text))

	verr := u.ParseAndValidate(text)
	st := u.State()
	switch {
	case errors.Is(verr, validator.ErrInvalidJSON):
		log.Warn("invalid JSON", "error", verr)
	case errors.Is(verr, validator.ErrValidationFailed):
		log.Warn("rows failed validation", "total_records", st.TotalRecords, "error_text", st.ErrorText)
	default:
		log.Info("rows validated", "total_records", st.TotalRecords)
	}

	return Result{Outcome: Loaded, Err: verr}
}

// ParseAndValidate parses text as the uploaded JSON array and validates every
// row, replacing the failure flag, error text, records and record count.
// Progress is left as is. The returned error wraps validator.ErrInvalidJSON
// or is validator.ErrValidationFailed; the host dialog stays open either way.
func (u *Uploader) ParseAndValidate(text string) error {
	sum, err := validator.Validate([]byte(text))
	if errors.Is(err, validator.ErrInvalidJSON) {
		msg := u.translator.Instant(KeyInvalidJSON, nil)

		u.mu.Lock()
		u.state.Failed = true
		u.state.ErrorText = msg
		u.state.Records = []record.Row{}
		u.state.TotalRecords = 0
		u.mu.Unlock()
		return err
	}

	msgs := make([]string, 0, len(sum.RowErrors))
	for _, re := range sum.RowErrors {
		msgs = append(msgs, u.translator.Instant(KeyErrorInItem, map[string]any{
			"index": re.Index + 1,
			"error": re.Message,
		}))
	}

	u.mu.Lock()
	u.state.Records = sum.Records
	u.state.TotalRecords = sum.TotalRecords
	u.state.Failed = len(msgs) > 0
	u.state.ErrorText = strings.Join(msgs, "\n")
	u.mu.Unlock()

	return err
}

func (u *Uploader) setProgress(percent int) {
	percent = max(0, min(100, percent))

	u.mu.Lock()
	u.state.ProgressPercent = percent
	u.mu.Unlock()
}

func (u *Uploader) openAlert(message string) {
	u.dialog.OpenAlert(AlertOptions{
		Title:        u.translator.Instant(KeyProblem, nil),
		DisableClose: true,
		Message:      message,
		CloseButton:  u.translator.Instant(KeyClose, nil),
	})
}
