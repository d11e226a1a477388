package uploader_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrovis/json-upload-guard/internal/accept"
	"github.com/bodrovis/json-upload-guard/internal/i18n"
	"github.com/bodrovis/json-upload-guard/internal/logging"
	"github.com/bodrovis/json-upload-guard/pkg/record"
	"github.com/bodrovis/json-upload-guard/pkg/uploader"
	"github.com/bodrovis/json-upload-guard/pkg/validator"
)

/*** fakes ***/

type fakeDialog struct {
	mu     sync.Mutex
	alerts []uploader.AlertOptions
}

func (d *fakeDialog) OpenAlert(opts uploader.AlertOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, opts)
}

func (d *fakeDialog) Alerts() []uploader.AlertOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uploader.AlertOptions(nil), d.alerts...)
}

type fakeRef struct {
	mu     sync.Mutex
	closed int
}

func (r *fakeRef) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
}

func (r *fakeRef) Closed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

type fakeFile struct {
	name, typ string
}

func (f fakeFile) Name() string { return f.name }
func (f fakeFile) Type() string { return f.typ }
func (f fakeFile) Size() int64  { return 0 }
func (f fakeFile) Open() (io.ReadCloser, error) {
	return nil, errors.New("fake files are not opened directly")
}

func jsonFile() fakeFile { return fakeFile{name: "items.json", typ: "application/json"} }

type fakeReader struct {
	text     string
	err      error
	progress []int
	release  chan struct{}

	mu    sync.Mutex
	calls int
}

func (r *fakeReader) ReadAsText(ctx context.Context, f uploader.File, progress uploader.ProgressFunc) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	for _, p := range r.progress {
		progress(p)
	}
	if r.release != nil {
		<-r.release
	}
	return r.text, r.err
}

func (r *fakeReader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type harness struct {
	dialog *fakeDialog
	ref    *fakeRef
	reader *fakeReader
	up     *uploader.Uploader
}

func newHarness(t *testing.T, reader *fakeReader) *harness {
	t.Helper()
	catalog, err := i18n.Load("en")
	require.NoError(t, err)

	h := &harness{dialog: &fakeDialog{}, ref: &fakeRef{}, reader: reader}
	h.up = uploader.New(h.dialog, catalog, h.ref, reader)
	return h
}

func wait(t *testing.T, ch <-chan uploader.Result) uploader.Result {
	t.Helper()
	select {
	case res, ok := <-ch:
		require.True(t, ok, "channel closed without a result")
		_, open := <-ch
		require.False(t, open, "channel must be closed after the result")
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for upload result")
		return uploader.Result{}
	}
}

func invalidJSONText(t *testing.T) string {
	t.Helper()
	c, err := i18n.Load("en")
	require.NoError(t, err)
	return c.Instant(uploader.KeyInvalidJSON, nil)
}

/*** scenarios ***/

func TestUploadFile_ValidSingleRow(t *testing.T) {
	h := newHarness(t, &fakeReader{text: `[{"id":1,"name":"Test","status":"active"}]`})

	res := wait(t, h.up.UploadFile(context.Background(), jsonFile()))
	require.Equal(t, uploader.Loaded, res.Outcome)
	require.NoError(t, res.Err)

	st := h.up.State()
	assert.False(t, st.Failed)
	assert.Equal(t, "", st.ErrorText)
	assert.Equal(t, 1, st.TotalRecords)
	require.Len(t, st.Records, 1)

	out, err := json.Marshal(st.Records)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Test","status":"active"}]`, string(out))

	assert.Empty(t, h.dialog.Alerts())
	assert.Equal(t, 0, h.ref.Closed())
	assert.Equal(t, "items.json", h.up.File().Name())
}

func TestUploadFile_MissingID(t *testing.T) {
	h := newHarness(t, &fakeReader{text: `[{"name":"X","status":"active"}]`})

	res := wait(t, h.up.UploadFile(context.Background(), jsonFile()))
	assert.Equal(t, uploader.Loaded, res.Outcome)
	assert.ErrorIs(t, res.Err, validator.ErrValidationFailed)

	st := h.up.State()
	assert.True(t, st.Failed)
	assert.Contains(t, st.ErrorText, "Error in item 1: Missing required column: id")
	assert.Equal(t, 1, st.TotalRecords)
	assert.Len(t, st.Records, 1)
	assert.Equal(t, 0, h.ref.Closed(), "validation errors keep the host dialog open")
}

func TestUploadFile_UnknownStatus(t *testing.T) {
	h := newHarness(t, &fakeReader{text: `[{"id":1,"name":"X","status":"unknown"}]`})

	wait(t, h.up.UploadFile(context.Background(), jsonFile()))

	st := h.up.State()
	assert.True(t, st.Failed)
	assert.Contains(t, st.ErrorText, "Invalid status value: unknown")
}

func TestUploadFile_NotJSON(t *testing.T) {
	h := newHarness(t, &fakeReader{text: `not json`})

	res := wait(t, h.up.UploadFile(context.Background(), jsonFile()))
	assert.Equal(t, uploader.Loaded, res.Outcome)
	assert.ErrorIs(t, res.Err, validator.ErrInvalidJSON)

	st := h.up.State()
	assert.True(t, st.Failed)
	assert.Equal(t, invalidJSONText(t), st.ErrorText)
	assert.Empty(t, st.Records)
	assert.NotNil(t, st.Records)
	assert.Equal(t, 0, st.TotalRecords)
	assert.Equal(t, 0, h.ref.Closed(), "invalid JSON keeps the host dialog open")
	assert.Empty(t, h.dialog.Alerts())
}

func TestUploadFile_RejectsUnsupportedFormat(t *testing.T) {
	reader := &fakeReader{text: `[]`}
	h := newHarness(t, reader)

	res := wait(t, h.up.UploadFile(context.Background(), fakeFile{name: "a.txt", typ: "text/plain"}))
	assert.Equal(t, uploader.Rejected, res.Outcome)
	assert.ErrorIs(t, res.Err, accept.ErrUnsupportedFormat)

	alerts := h.dialog.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "There was a problem", alerts[0].Title)
	assert.True(t, alerts[0].DisableClose)
	assert.Contains(t, alerts[0].Message, "json")
	assert.Equal(t, "Close", alerts[0].CloseButton)

	assert.Equal(t, 1, h.ref.Closed())
	assert.Equal(t, 0, reader.Calls(), "no read is attempted for rejected files")
	assert.Nil(t, h.up.File())
	assert.False(t, h.up.State().Failed)
}

func TestUploadFile_LogsCarryAttemptFields(t *testing.T) {
	catalog, err := i18n.Load("en")
	require.NoError(t, err)

	var buf bytes.Buffer
	up := uploader.New(&fakeDialog{}, catalog, &fakeRef{}, &fakeReader{text: `[]`},
		uploader.WithLogger(logging.New(&buf, "debug", "json")))

	wait(t, up.UploadFile(context.Background(), fakeFile{name: "a.txt", typ: "text/plain"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, "a.txt", rec["file"], line)
		assert.NotEmpty(t, rec["attempt_id"], line)
	}
}

func TestUploadFile_RejectsWhenOnlyOneConditionHolds(t *testing.T) {
	for _, f := range []fakeFile{
		{name: "a.json", typ: "text/plain"},
		{name: "a.txt", typ: "application/json"},
	} {
		reader := &fakeReader{text: `[]`}
		h := newHarness(t, reader)

		res := wait(t, h.up.UploadFile(context.Background(), f))
		assert.Equal(t, uploader.Rejected, res.Outcome, "%+v", f)
		assert.Equal(t, 0, reader.Calls())
		assert.Equal(t, 1, h.ref.Closed())
	}
}

func TestUploadFile_ReadError(t *testing.T) {
	h := newHarness(t, &fakeReader{err: errors.New("permission revoked")})

	res := wait(t, h.up.UploadFile(context.Background(), jsonFile()))
	assert.Equal(t, uploader.Errored, res.Outcome)
	assert.ErrorIs(t, res.Err, uploader.ErrReadFailed)

	st := h.up.State()
	assert.True(t, st.Failed)
	assert.Empty(t, st.Records)

	alerts := h.dialog.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "permission revoked", alerts[0].Message)
	assert.True(t, alerts[0].DisableClose)
	assert.Equal(t, 1, h.ref.Closed())
}

func TestUploadFile_ProgressIsClampedAndKept(t *testing.T) {
	h := newHarness(t, &fakeReader{text: `[]`, progress: []int{10, 55, 150}})

	wait(t, h.up.UploadFile(context.Background(), jsonFile()))
	assert.Equal(t, 100, h.up.State().ProgressPercent)
}

func TestUploadFile_ProgressVisibleWhileReading(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, &fakeReader{text: `[]`, progress: []int{42}, release: release})

	ch := h.up.UploadFile(context.Background(), jsonFile())

	require.Eventually(t, func() bool {
		return h.up.State().ProgressPercent == 42
	}, 2*time.Second, 5*time.Millisecond)

	close(release)
	wait(t, ch)
}

func TestUploadFile_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, &fakeReader{text: `[{"id":1,"name":"a","status":"active"}]`, release: release})

	first := h.up.UploadFile(context.Background(), jsonFile())

	second := wait(t, h.up.UploadFile(context.Background(), jsonFile()))
	assert.Equal(t, uploader.Rejected, second.Outcome)
	assert.ErrorIs(t, second.Err, uploader.ErrUploadInProgress)
	assert.Empty(t, h.dialog.Alerts())
	assert.Equal(t, 0, h.ref.Closed())

	close(release)
	res := wait(t, first)
	assert.Equal(t, uploader.Loaded, res.Outcome)

	// the uploader is reusable once the attempt is over
	h.reader.release = nil
	again := wait(t, h.up.UploadFile(context.Background(), jsonFile()))
	assert.Equal(t, uploader.Loaded, again.Outcome)
}

func TestUploadFile_NewAttemptResetsState(t *testing.T) {
	reader := &fakeReader{text: `oops`}
	h := newHarness(t, reader)

	wait(t, h.up.UploadFile(context.Background(), jsonFile()))
	require.True(t, h.up.State().Failed)

	reader.text = `[{"id":2,"name":"b","status":"pending"}]`
	wait(t, h.up.UploadFile(context.Background(), jsonFile()))

	st := h.up.State()
	assert.False(t, st.Failed)
	assert.Equal(t, "", st.ErrorText)
	assert.Equal(t, 1, st.TotalRecords)
}

/*** ParseAndValidate ***/

func TestParseAndValidate_ObjectRootIsInvalidJSON(t *testing.T) {
	h := newHarness(t, &fakeReader{})

	err := h.up.ParseAndValidate(`{"id":1,"name":"x","status":"active"}`)
	require.ErrorIs(t, err, validator.ErrInvalidJSON)

	st := h.up.State()
	assert.True(t, st.Failed)
	assert.Equal(t, invalidJSONText(t), st.ErrorText)
	assert.Equal(t, 0, st.TotalRecords)
	assert.Empty(t, st.Records)
}

func TestParseAndValidate_MultipleErrorsJoinedInOrder(t *testing.T) {
	h := newHarness(t, &fakeReader{})

	in := `[
		{"id":1,"name":"ok","status":"active"},
		{"name":"X","status":"bogus"},
		{"id":3,"name":4,"status":"active"},
		{"id":4,"name":"d","status":"gone"}
	]`
	err := h.up.ParseAndValidate(in)
	require.ErrorIs(t, err, validator.ErrValidationFailed)

	st := h.up.State()
	assert.Equal(t, strings.Join([]string{
		"Error in item 2: Missing required column: id",
		"Error in item 3: Invalid type for column: name",
		"Error in item 4: Invalid status value: gone",
	}, "\n"), st.ErrorText)
	assert.Equal(t, 4, st.TotalRecords)
	assert.Len(t, st.Records, 4)
}

func TestParseAndValidate_Idempotent(t *testing.T) {
	h := newHarness(t, &fakeReader{})
	in := `[{"id":1,"name":"a","status":"active"},{"id":"2"}]`

	_ = h.up.ParseAndValidate(in)
	first := h.up.State()
	_ = h.up.ParseAndValidate(in)
	second := h.up.State()

	assert.Equal(t, first.Failed, second.Failed)
	assert.Equal(t, first.ErrorText, second.ErrorText)
	assert.Equal(t, first.TotalRecords, second.TotalRecords)

	a, _ := json.Marshal(first.Records)
	b, _ := json.Marshal(second.Records)
	assert.Equal(t, string(a), string(b))
}

func TestParseAndValidate_UsesTranslator(t *testing.T) {
	es, err := i18n.Load("es")
	require.NoError(t, err)

	up := uploader.New(&fakeDialog{}, es, &fakeRef{}, &fakeReader{})
	_ = up.ParseAndValidate(`[{"name":"X","status":"active"}]`)

	assert.Equal(t, "Error en el elemento 1: Missing required column: id", up.State().ErrorText)
}

func TestState_ReturnsSnapshot(t *testing.T) {
	h := newHarness(t, &fakeReader{})
	_ = h.up.ParseAndValidate(`[{"id":1,"name":"a","status":"active"}]`)

	st := h.up.State()
	st.Records[0] = record.MustDecode(`{}`)

	fresh := h.up.State()
	require.Len(t, fresh.Records, 1)
	assert.True(t, fresh.Records[0].Has("id"))
}

func TestNew_InitialState(t *testing.T) {
	up := uploader.New(&fakeDialog{}, i18n.New("en", nil), &fakeRef{}, &fakeReader{})

	st := up.State()
	assert.False(t, st.Failed)
	assert.Equal(t, "", st.ErrorText)
	assert.NotNil(t, st.Records)
	assert.Empty(t, st.Records)
	assert.Equal(t, 0, st.TotalRecords)
	assert.Equal(t, 0, st.ProgressPercent)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "rejected", uploader.Rejected.String())
	assert.Equal(t, "loaded", uploader.Loaded.String())
	assert.Equal(t, "errored", uploader.Errored.String())
	assert.Equal(t, "unknown", uploader.Outcome(42).String())
}
