package bundler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileLockStore(t *testing.T) {
	t.Run("empty path selects the default file", func(t *testing.T) {
		if s := NewFileLockStore(""); s.Path != DefaultLockFile {
			t.Errorf("Expected %s, got %s", DefaultLockFile, s.Path)
		}
	})

	t.Run("missing file is an empty lock", func(t *testing.T) {
		s := NewFileLockStore(filepath.Join(t.TempDir(), "lock.json"))
		l, err := s.Load()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if l == nil || len(l) != 0 {
			t.Errorf("Expected empty lock, got %v", l)
		}
	})

	t.Run("save then load", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "lock.json")
		s := NewFileLockStore(p)
		if err := s.Save(Lock{"vault": "ab01", "oracle": "cd02"}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		b, _ := os.ReadFile(p)
		expected := "{\n    \"oracle\": \"cd02\",\n    \"vault\": \"ab01\"\n}\n"
		if string(b) != expected {
			t.Errorf("Expected %q, got %q", expected, string(b))
		}

		l, err := s.Load()
		if err != nil {
			t.Fatal(err)
		}
		if l["vault"] != "ab01" || l["oracle"] != "cd02" {
			t.Errorf("Unexpected lock %v", l)
		}
	})

	t.Run("digests are lowercased", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "lock.json")
		_ = os.WriteFile(p, []byte(`{"vault": "AB01"}`), 0o644)
		l, err := NewFileLockStore(p).Load()
		if err != nil || l["vault"] != "ab01" {
			t.Errorf("Expected ab01, got %q (%v)", l["vault"], err)
		}
	})

	t.Run("invalid digest", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "lock.json")
		_ = os.WriteFile(p, []byte(`{"vault": "zz"}`), 0o644)
		if _, err := NewFileLockStore(p).Load(); err == nil {
			t.Error("Expected an error for a non-hex digest")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "lock.json")
		_ = os.WriteFile(p, []byte(`{`), 0o644)
		if _, err := NewFileLockStore(p).Load(); err == nil {
			t.Error("Expected a parse error")
		}
	})

	t.Run("null document is an empty lock", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "lock.json")
		_ = os.WriteFile(p, []byte(`null`), 0o644)
		l, err := NewFileLockStore(p).Load()
		if err != nil || l == nil {
			t.Errorf("Expected empty lock, got %v (%v)", l, err)
		}
	})
}

func TestMemoryLockStore(t *testing.T) {
	initial := Lock{"a": "01"}
	s := NewMemoryLockStore(initial)
	initial["a"] = "02"

	l, _ := s.Load()
	if l["a"] != "01" {
		t.Error("Store should copy the initial lock")
	}
	l["a"] = "03"
	if again, _ := s.Load(); again["a"] != "01" {
		t.Error("Load should return a copy")
	}

	_ = s.Save(Lock{"b": "04"})
	if s.Saves() != 1 {
		t.Errorf("Expected 1 save, got %d", s.Saves())
	}
	if l, _ := s.Load(); l["b"] != "04" || len(l) != 1 {
		t.Errorf("Unexpected lock after save %v", l)
	}
}
