package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("## Goal: Cloud\n- id: cap.cloud\n")
	if err := s.Write("strategy.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("strategy.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("a/b/c.json", []byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("content = %q", got)
	}
}

func TestExists(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("skills.json", []byte("{}"))

	ok, err := s.Exists("skills.json")
	if err != nil || !ok {
		t.Errorf("Exists(skills.json) = %v, %v", ok, err)
	}
	ok, err = s.Exists("learning.json")
	if err != nil || ok {
		t.Errorf("Exists(learning.json) = %v, %v", ok, err)
	}
	if ok, _ := s.Exists(""); ok {
		t.Error("root directory reported as a file")
	}
}

func TestList(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("skills.json", []byte("a"))
	_ = s.Write("sub/employees.json", []byte("b"))
	_ = s.Write("strategy.md", []byte("not json"))

	items, err := s.List("", ".json")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Checksum == "" {
			t.Errorf("%s: empty checksum", it.Path)
		}
	}

	all, _ := s.List("", "")
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestSaveArtifact(t *testing.T) {
	s := tempRoot(t)
	rel, err := s.SaveArtifact("strategy", ".md", []byte("garbage"))
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if !strings.HasPrefix(rel, RejectedDir+"/strategy-") || !strings.HasSuffix(rel, ".md") {
		t.Errorf("path = %q", rel)
	}
	got, _ := s.Read(rel)
	if string(got) != "garbage" {
		t.Errorf("content = %q", got)
	}
	other, _ := s.SaveArtifact("strategy", ".md", []byte("again"))
	if other == rel {
		t.Error("artifact names collide")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.json",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if _, err := s.Exists(p); err == nil {
			t.Errorf("expected error for exists %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("strategy.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("strategy.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("strategy.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, tmpPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestChecksumStable(t *testing.T) {
	if Checksum([]byte("x")) != Checksum([]byte("x")) {
		t.Error("checksum not deterministic")
	}
	if Checksum([]byte("x")) == Checksum([]byte("y")) {
		t.Error("checksum collision")
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "skillgap-test-*")
	_ = f.Close()
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
