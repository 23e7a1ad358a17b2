package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"manual-assistant-be/internal/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCache(t *testing.T) *ContentCache {
	t.Helper()
	c, err := NewContentCache(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	dir := t.TempDir()
	doc := writeFile(t, dir, "manual.pdf", "contenido del manual")

	if !c.Put(doc, map[string]string{"title": "Manual"}) {
		t.Fatal("put failed")
	}

	raw, hit := c.Get(doc)
	if !hit {
		t.Fatal("expected cache hit")
	}
	var entry map[string]string
	if err := json.Unmarshal(raw, &entry); err != nil {
		t.Fatalf("stored entry is not valid JSON: %v", err)
	}
	if entry["title"] != "Manual" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestCacheKeyedByContentNotName(t *testing.T) {
	c := newTestCache(t)
	dir := t.TempDir()
	original := writeFile(t, dir, "manual_v1.pdf", "mismo contenido")
	renamed := writeFile(t, dir, "otro_nombre.pdf", "mismo contenido")

	c.Put(original, map[string]string{"title": "Manual"})

	if _, hit := c.Get(renamed); !hit {
		t.Error("identical content under another name must hit")
	}
}

func TestCacheMissesOnContentChange(t *testing.T) {
	c := newTestCache(t)
	dir := t.TempDir()
	doc := writeFile(t, dir, "manual.pdf", "contenido original")

	c.Put(doc, map[string]string{"title": "Manual"})

	writeFile(t, dir, "manual.pdf", "contenido originaX")
	if _, hit := c.Get(doc); hit {
		t.Error("changed content must miss even though a stale entry exists")
	}
}

func TestCacheAbsentOnMissingSource(t *testing.T) {
	c := newTestCache(t)
	if _, hit := c.Get(filepath.Join(t.TempDir(), "no_existe.pdf")); hit {
		t.Error("missing source file must be absent, not an error")
	}
}

func TestCacheGetByHash(t *testing.T) {
	c := newTestCache(t)
	c.PutByHash("abc123", map[string]int{"pages": 40})

	raw, hit := c.GetByHash("abc123")
	if !hit {
		t.Fatal("expected hit by hash")
	}
	var entry map[string]int
	if err := json.Unmarshal(raw, &entry); err != nil || entry["pages"] != 40 {
		t.Errorf("unexpected entry: %s", raw)
	}

	if _, hit := c.GetByHash("never-stored"); hit {
		t.Error("unknown hash must miss")
	}
}

func TestHashFileIsStable(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.bin", "datos")
	b := writeFile(t, dir, "b.bin", "datos")

	hashA, err := HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	hashB, err := HashFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if hashA != hashB {
		t.Error("same content must hash identically")
	}
	if len(hashA) != 64 {
		t.Errorf("expected hex sha256, got %q", hashA)
	}
}
