package logfile

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestCreate_nameFormat(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	stamp := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	f, err := Create(50, stamp)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := "splitvent-50hz-20260731_120000.log"
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected file %s to exist: %v", want, err)
	}
}

func TestWrite_formatsFixedDecimals(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	os.Chdir(dir)
	t.Cleanup(func() { os.Chdir(wd) })

	f, err := Create(50, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Write(1.5, 3.0, 10.126); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log file, got %d", len(entries))
	}
	contents, err := os.ReadFile(entries[0].Name())
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimRight(string(contents), "\n")
	want := `{"t": 1.500000, "slm": 3.00, "cmH2O": 10.13}`
	if line != want {
		t.Errorf("line = %q, want %q", line, want)
	}
}

func TestClose_idempotentAndRejectsLateWrite(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	os.Chdir(dir)
	t.Cleanup(func() { os.Chdir(wd) })

	f, err := Create(50, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close must be a no-op, got %v", err)
	}
	if err := f.Write(0, 0, 0); err == nil {
		t.Fatal("Write after Close should fail")
	}
}
