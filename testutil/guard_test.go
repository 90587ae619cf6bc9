package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPredicates(t *testing.T) {
	cases := []struct {
		pred Predicate
		in   string
		want bool
	}{
		{InternalImportForbidden, "dwellingcore/internal/core", true},
		{InternalImportForbidden, "dwellingcore/pkg/domain", false},
		{TransportImportForbidden, "dwellingcore/internal/api", true},
		{TransportImportForbidden, "dwellingcore/internal/apiutil", false},
		{TransportImportForbidden, "dwellingcore/cmd/dwellingctl", true},
		{AnyOf(InternalImportForbidden, TransportImportForbidden), "dwellingcore/cmd/x", true},
		{AnyOf(), "anything", false},
	}
	for _, c := range cases {
		if got := c.pred(c.in); got != c.want {
			t.Fatalf("predicate(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolationsIgnoresTestsAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.go", "package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}\n")
	writeFile(t, dir, "x_test.go", "package tmp\nimport \"dwellingcore/internal/core\"\n")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "y.go", "package sub\nimport \"dwellingcore/internal/core\"\n")

	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 0 {
		t.Fatalf("expected no violations, got %v", viols)
	}
	AssertNoDirectImports(t, dir, InternalImportForbidden, "none expected")
}

func TestDirectImportViolationsReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.go", "package tmp\nimport _ \"dwellingcore/internal/core\"\n")
	writeFile(t, dir, "a.go", "package tmp\nimport _ \"dwellingcore/internal/api\"\n")
	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []string{"dwellingcore/internal/api (in a.go)", "dwellingcore/internal/core (in b.go)"}
	if fmt.Sprint(viols) != fmt.Sprint(want) {
		t.Fatalf("got %v want %v", viols, want)
	}
}

func TestDirectImportViolationsParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.go", "package\n")
	if _, err := directImportViolations(dir, InternalImportForbidden); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := directImportViolations(filepath.Join(dir, "missing"), InternalImportForbidden); err == nil {
		t.Fatal("expected read error")
	}
}

type recordingT struct{ msg string }

func (r *recordingT) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func TestFailIfViolations(t *testing.T) {
	rec := &recordingT{}
	failIfViolations(rec, "layering", nil)
	if rec.msg != "" {
		t.Fatalf("unexpected failure %q", rec.msg)
	}
	failIfViolations(rec, "layering", []string{"a", "b"})
	if !strings.Contains(rec.msg, "layering") || !strings.Contains(rec.msg, "a\nb") {
		t.Fatalf("unexpected message %q", rec.msg)
	}
}
