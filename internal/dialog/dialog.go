// Package dialog provides terminal stand-ins for the host UI: alerts are
// printed and the host dialog is a flag the caller inspects after an attempt.
package dialog

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/bodrovis/json-upload-guard/pkg/uploader"
)

type Console struct {
	out    io.Writer
	logger *slog.Logger

	mu     sync.Mutex
	opened int
}

func NewConsole(out io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{out: out, logger: logger}
}

func (c *Console) OpenAlert(opts uploader.AlertOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened++

	c.logger.Debug("alert opened", "title", opts.Title, "disable_close", opts.DisableClose)

	sep := strings.Repeat("!", 72)
	fmt.Fprintln(c.out, sep)
	fmt.Fprintf(c.out, "%s\n", opts.Title)
	if opts.Message != "" {
		fmt.Fprintf(c.out, "  %s\n", opts.Message)
	}
	if opts.CloseButton != "" {
		fmt.Fprintf(c.out, "  [%s]\n", opts.CloseButton)
	}
	fmt.Fprintln(c.out, sep)
}

// Opened returns how many alerts were shown.
func (c *Console) Opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

// Host is the dialog that started an upload flow. Closing it marks the flow
// as aborted.
type Host struct {
	mu     sync.Mutex
	closed bool
}

func NewHost() *Host { return &Host{} }

func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

func (h *Host) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
