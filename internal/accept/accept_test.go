package accept

import (
	"errors"
	"testing"
)

type stubFile struct{ name, typ string }

func (s stubFile) Name() string { return s.name }
func (s stubFile) Type() string { return s.typ }

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"data.json":      "json",
		"archive.tar.gz": "gz",
		"README":         "README",
		"json":           "json",
		"trailing.":      "",
		".json":          "json",
		"UPPER.JSON":     "JSON",
	}
	for in, want := range cases {
		if got := Extension(in); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAccept_OK(t *testing.T) {
	cases := []stubFile{
		{name: "users.json", typ: "application/json"},
		{name: "json", typ: "application/json"},
	}
	for _, f := range cases {
		if err := Accept(f); err != nil {
			t.Fatalf("Accept(%+v): unexpected error: %v", f, err)
		}
	}
}

func TestAccept_Rejects(t *testing.T) {
	cases := []stubFile{
		{name: "a.txt", typ: "text/plain"},
		{name: "a.json", typ: "text/plain"},
		{name: "a.txt", typ: "application/json"},
		{name: "a.JSON", typ: "application/json"},
		{name: "a.json", typ: ""},
		{name: "a.json", typ: "application/json; charset=utf-8"},
	}
	for _, f := range cases {
		err := Accept(f)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("Accept(%+v) = %v, want ErrUnsupportedFormat", f, err)
		}
	}
}
