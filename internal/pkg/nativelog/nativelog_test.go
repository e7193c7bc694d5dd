package nativelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriterAppendsDailyFile(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	for _, line := range []string{"one\n", "two\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	data, err := os.ReadFile(filepath.Join(w.Dir(), TodayFilename(time.Now())))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("log content = %q", data)
	}
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.Local)
	for _, name := range []string{
		TodayFilename(now),
		TodayFilename(now.AddDate(0, 0, -20)),
		TodayFilename(now.AddDate(0, 0, -40)),
		"other.log",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	removed, err := Prune(dir, 14*24*time.Hour, now)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune() removed %d, want 2", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "other.log")); err != nil {
		t.Errorf("Prune() touched unrelated file: %v", err)
	}
}
