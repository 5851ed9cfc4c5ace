package repl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int
		add     []string
		want    []string
	}{
		{"keeps order", 10, []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"evicts oldest", 3, []string{"a", "b", "c", "d"}, []string{"b", "c", "d"}},
		{"skips repeats", 10, []string{"a", "a", "b", "a"}, []string{"a", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory("")
			h.maxSize = tt.maxSize
			for _, s := range tt.add {
				h.Add(s)
			}
			if got := strings.Join(h.Entries(), ","); got != strings.Join(tt.want, ",") {
				t.Errorf("Entries() = %v, want %v", h.Entries(), tt.want)
			}
		})
	}
}

func TestHistory_Get(t *testing.T) {
	h := NewHistory("")
	h.Add("first")
	h.Add("second")

	tests := []struct {
		index int
		want  string
	}{
		{0, "second"},
		{1, "first"},
		{2, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(path)
	h.Add("ECHO 1")
	h.Add("UPPER x")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("mode = %o, want 600", perm)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Get(0) != "UPPER x" || loaded.Get(1) != "ECHO 1" {
		t.Errorf("loaded = %v", loaded.Entries())
	}
}

func TestHistory_MissingAndMemoryOnly(t *testing.T) {
	if err := NewHistory(filepath.Join(t.TempDir(), "missing")).Load(); err != nil {
		t.Errorf("Load(missing) error = %v", err)
	}

	mem := NewHistory("")
	mem.Add("x")
	if err := mem.Save(); err != nil {
		t.Errorf("Save() in memory error = %v", err)
	}
	if err := mem.Load(); err != nil {
		t.Errorf("Load() in memory error = %v", err)
	}
}
