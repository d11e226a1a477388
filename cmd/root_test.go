package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_HasUpload(t *testing.T) {
	cmd := RootCmd()
	found := false
	for _, c := range cmd.Commands() {
		if c.Name() == "upload" {
			found = true
		}
	}
	if !found {
		t.Fatal("upload subcommand not registered")
	}
}

func TestRootCmd_Version(t *testing.T) {
	cmd := RootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "upload-guard ") {
		t.Fatalf("unexpected version output: %q", buf.String())
	}
}

func TestRootCmd_CanBeBuiltTwice(t *testing.T) {
	a, b := RootCmd(), RootCmd()
	if a == b {
		t.Fatal("expected independent command trees")
	}
}
