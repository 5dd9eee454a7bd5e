package assetcache

import (
	"strings"
	"testing"
)

func TestIdentityKeyStable(t *testing.T) {
	raw := []byte("body { color: red }")
	a := NewIdentity("theme-style", raw, 1700000000)
	b := NewIdentity("theme-style", raw, 1700000000)
	if a.Key() != b.Key() {
		t.Errorf("same identity must derive the same key:\n%s\n%s", a.Key(), b.Key())
	}
}

func TestIdentityKeySensitivity(t *testing.T) {
	raw := []byte("body { color: red }")
	base := NewIdentity("theme-style", raw, 1700000000)

	t.Run("mtime change misses", func(t *testing.T) {
		touched := NewIdentity("theme-style", raw, 1700000001)
		if touched.Key() == base.Key() {
			t.Error("different mtime must derive a different key")
		}
	})

	t.Run("whitespace-only content change misses", func(t *testing.T) {
		changed := NewIdentity("theme-style", []byte("body { color: red } "), 1700000000)
		if changed.Key() == base.Key() {
			t.Error("different content must derive a different key")
		}
	})

	t.Run("different handle misses", func(t *testing.T) {
		other := NewIdentity("plugin-style", raw, 1700000000)
		if other.Key() == base.Key() {
			t.Error("different handle must derive a different key")
		}
	})
}

func TestIdentityKeyShape(t *testing.T) {
	id := NewIdentity("My Theme/style.css?ver=1.2", []byte("x"), 42)
	key := id.Key()

	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 || len(parts[0]) != 2 {
		t.Fatalf("expected a two-hex-digit shard prefix, got %q", key)
	}
	if strings.ContainsAny(parts[1], "/?* ") {
		t.Errorf("key body must be storage-safe, got %q", parts[1])
	}
	if !strings.Contains(parts[1], "-42-") {
		t.Errorf("key must embed the mtime, got %q", parts[1])
	}
}

func TestSanitizeHandle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jquery-core", "jquery-core"},
		{"Theme Style", "theme-style"},
		{"a/b\\c", "a-b-c"},
		{"UPPER_case", "upper_case"},
	}
	for _, tt := range tests {
		if got := sanitizeHandle(tt.in); got != tt.want {
			t.Errorf("sanitizeHandle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
