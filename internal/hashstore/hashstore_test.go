package hashstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInsertAndContains(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	s, err := Open(dir, now)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Contains("abc") {
		t.Fatal("expected hash not present before insert")
	}
	if err := s.Insert("abc"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !s.Contains("abc") {
		t.Fatal("expected hash present after insert")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	s1, err := Open(dir, now)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s1.Insert("xyz"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	s2, err := Open(dir, now)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !s2.Contains("xyz") {
		t.Fatal("expected hash to survive reopen")
	}
}

func TestPreviousMonthConsulted(t *testing.T) {
	dir := t.TempDir()
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s1, err := Open(dir, march)
	if err != nil {
		t.Fatalf("open march: %v", err)
	}
	if err := s1.Insert("carryover"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	s2, err := Open(dir, april)
	if err != nil {
		t.Fatalf("open april: %v", err)
	}
	if !s2.Contains("carryover") {
		t.Fatal("expected previous month's hash to be consulted")
	}
}

func TestEvictsExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, dirName)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(root, filePrefix+"2020-01.json")
	if err := os.WriteFile(stale, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	oldTime := time.Now().Add(-120 * 24 * time.Hour)
	if err := os.Chtimes(stale, oldTime, oldTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, err := Open(dir, time.Now()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale partition to be evicted, stat err=%v", err)
	}
}
