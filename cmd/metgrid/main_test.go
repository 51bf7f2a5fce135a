package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(version) = %d, stderr %q", code, stderr.String())
	}
	if want := "metgrid dev (commit unknown, built unknown)\n"; stdout.String() != want {
		t.Errorf("version output = %q, want %q", stdout.String(), want)
	}

	stdout.Reset()
	stderr.Reset()
	if code := run(context.Background(), []string{"gridinfo", "G999"}, &stdout, &stderr); code != 1 {
		t.Errorf("run(gridinfo G999) = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "metgrid failed") {
		t.Errorf("error was not logged: %q", stderr.String())
	}
}
