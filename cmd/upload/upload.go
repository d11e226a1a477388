package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bodrovis/json-upload-guard/internal/config"
	"github.com/bodrovis/json-upload-guard/internal/dialog"
	"github.com/bodrovis/json-upload-guard/internal/i18n"
	"github.com/bodrovis/json-upload-guard/internal/logging"
	"github.com/bodrovis/json-upload-guard/internal/source"
	"github.com/bodrovis/json-upload-guard/pkg/uploader"
)

var ErrUploadFailed = errors.New("upload check failed")

var outputs = []string{"text", "yaml", "json"}

type options struct {
	files       []string
	contentType string
	locale      string
	output      string
	envFile     string
	fs          afero.Fs
}

type fileReport struct {
	File       string                `json:"file" yaml:"file"`
	Outcome    string                `json:"outcome" yaml:"outcome"`
	Error      string                `json:"error,omitempty" yaml:"error,omitempty"`
	HostClosed bool                  `json:"hostClosed" yaml:"hostClosed"`
	State      *uploader.UploadState `json:"state,omitempty" yaml:"state,omitempty"`
}

func (r fileReport) passed() bool {
	return r.State != nil && r.Outcome == uploader.Loaded.String() && !r.State.Failed
}

func NewCommand() *cobra.Command {
	return newCommand(&options{})
}

func newCommand(opts *options) *cobra.Command {
	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Accept, read and validate one or multiple JSON item files",
		Long: `Run every file through the upload flow: format check, read with progress,
JSON parse and per-item validation.

Example:
  upload-guard upload -f items.json
  upload-guard upload -f a.json,b.json --locale es
  upload-guard upload -f a.json -f b.json --output yaml
`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.files) == 0 {
				return fmt.Errorf("no files provided: use --files to specify one or more JSON files")
			}
			if !slices.Contains(outputs, opts.output) {
				return fmt.Errorf("unknown output %q (expected one of %s)", opts.output, strings.Join(outputs, ", "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := uploadCmd.Flags()
	f.StringSliceVarP(&opts.files, "files", "f", nil, "Path(s) to JSON file(s) to upload (comma-separated or repeatable)")
	f.StringVar(&opts.contentType, "content-type", "", "Declared content type (default: derived from the file extension)")
	f.StringVar(&opts.locale, "locale", "", "Message catalog to use (overrides UPLOAD_LOCALE)")
	f.StringVarP(&opts.output, "output", "o", "text", "Report format: text, yaml or json")
	f.StringVar(&opts.envFile, "env-file", "", "Read settings from this file instead of .env")

	return uploadCmd
}

func Init(root *cobra.Command) {
	root.AddCommand(NewCommand())
}

func run(cmd *cobra.Command, opts *options) error {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	locale := cfg.Upload.Locale
	if opts.locale != "" {
		locale = opts.locale
	}
	catalog, err := i18n.Load(locale)
	if err != nil {
		return err
	}

	fsys := opts.fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	out := cmd.OutOrStdout()
	alerts := out
	if opts.output != "text" {
		alerts = cmd.ErrOrStderr()
	}

	env := &runEnv{
		fs:          fsys,
		reader:      source.NewReader(cfg.Upload.ReadChunk),
		catalog:     catalog,
		alerts:      alerts,
		logger:      logger,
		baseDir:     cfg.Upload.BaseDir,
		contentType: opts.contentType,
	}

	logger.Debug("upload run started", "files", len(opts.files), "locale", catalog.Locale(), "base_dir", cfg.Upload.BaseDir)

	reports := make([]fileReport, 0, len(opts.files))
	for i, path := range opts.files {
		if opts.output == "text" && i > 0 {
			fmt.Fprintln(out)
		}
		rep := env.process(cmd.Context(), path)
		if opts.output == "text" {
			printText(out, rep)
		}
		reports = append(reports, rep)
	}

	var filesPassed, filesFailed, filesErrored int
	for _, rep := range reports {
		switch {
		case rep.passed():
			filesPassed++
		case rep.State == nil || rep.Outcome == uploader.Errored.String():
			filesErrored++
		default:
			filesFailed++
		}
	}

	switch opts.output {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	default:
		if len(reports) > 1 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Overall: %d passed, %d failed, %d error(s)\n",
				filesPassed, filesFailed, filesErrored)
		}
	}

	if filesErrored > 0 {
		return fmt.Errorf("one or more files could not be uploaded due to an error")
	}
	if filesFailed > 0 {
		return ErrUploadFailed
	}
	return nil
}

type runEnv struct {
	fs          afero.Fs
	reader      *source.Reader
	catalog     *i18n.Catalog
	alerts      io.Writer
	logger      *slog.Logger
	baseDir     string
	contentType string
}

func (e *runEnv) process(ctx context.Context, path string) fileReport {
	rep := fileReport{File: path}

	f, err := source.Open(e.fs, resolve(e.baseDir, path), e.contentType)
	if err != nil {
		e.logger.Error("cannot open file", "file", path, "error", err)
		rep.Outcome = "error"
		rep.Error = err.Error()
		return rep
	}

	host := dialog.NewHost()
	up := uploader.New(dialog.NewConsole(e.alerts, e.logger), e.catalog, host, e.reader, uploader.WithLogger(e.logger))

	res := <-up.UploadFile(ctx, f)

	st := up.State()
	rep.Outcome = res.Outcome.String()
	rep.HostClosed = host.Closed()
	rep.State = &st
	if res.Err != nil {
		rep.Error = res.Err.Error()
	}
	return rep
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

func printText(w io.Writer, rep fileReport) {
	sep := strings.Repeat("─", 72)

	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintf(w, "Uploading: %s\n", rep.File)
	fmt.Fprintf(w, "%s\n\n", sep)

	if rep.State == nil {
		fmt.Fprintf(w, "ERROR: %s\n", rep.Error)
		fmt.Fprintf(w, "%s\n", sep)
		return
	}

	st := rep.State
	fmt.Fprintf(w, "→ %s\n", rep.Outcome)
	fmt.Fprintf(w, "   Progress: %d%%\n", st.ProgressPercent)
	fmt.Fprintf(w, "   Records: %d\n", st.TotalRecords)
	if rep.HostClosed {
		fmt.Fprintf(w, "   Upload dialog closed\n")
	}

	if st.ErrorText == "" && rep.Error != "" {
		fmt.Fprintf(w, "   Reason: %s\n", rep.Error)
	}

	if st.ErrorText != "" {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, line := range strings.Split(st.ErrorText, "\n") {
			fmt.Fprintf(w, "   %s\n", line)
		}
	}

	if rep.passed() {
		fmt.Fprintln(w, "\nResult: PASSED")
	} else {
		fmt.Fprintln(w, "\nResult: FAILED")
	}
	fmt.Fprintf(w, "%s\n", sep)
}
