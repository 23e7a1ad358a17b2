package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"manual-assistant-be/internal/pkg/logger"
)

// ContentCache persists document analyses keyed by a cryptographic hash of
// the document's binary content, never its path. A renamed-but-unchanged file
// still hits; a same-named-but-edited file misses. Entries are opaque JSON
// blobs and never expire; only a content change invalidates them.
type ContentCache struct {
	dir    string
	logger logger.ILogger
}

func NewContentCache(dir string, log logger.ILogger) (*ContentCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &ContentCache{dir: dir, logger: log}, nil
}

// HashFile streams the whole file through SHA-256 in fixed-size blocks so
// memory stays bounded for large manuals.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Get returns the cached analysis for a document path, or absent. A missing
// source file is absent without computing any hash.
func (c *ContentCache) Get(documentPath string) (json.RawMessage, bool) {
	if _, err := os.Stat(documentPath); err != nil {
		return nil, false
	}

	hash, err := HashFile(documentPath)
	if err != nil {
		c.logger.Warn("CACHE", "Hashing failed, treating as miss", map[string]interface{}{
			"path":  documentPath,
			"error": err.Error(),
		})
		return nil, false
	}

	return c.GetByHash(hash)
}

// GetByHash looks an entry up directly by content hash. Document ids in the
// library collection are content hashes, so routing code uses this form.
func (c *ContentCache) GetByHash(hash string) (json.RawMessage, bool) {
	data, err := os.ReadFile(c.entryPath(hash))
	if err != nil {
		return nil, false
	}
	if !json.Valid(data) {
		c.logger.Warn("CACHE", "Corrupt entry ignored", map[string]interface{}{"hash": hash})
		return nil, false
	}
	return json.RawMessage(data), true
}

// Put stores an analysis under the document's content hash. Returns false on
// failure; the cache is a performance optimization, never a correctness
// dependency, so write failures are logged and swallowed.
func (c *ContentCache) Put(documentPath string, analysis interface{}) bool {
	hash, err := HashFile(documentPath)
	if err != nil {
		c.logger.Warn("CACHE", "Hashing failed, entry not saved", map[string]interface{}{
			"path":  documentPath,
			"error": err.Error(),
		})
		return false
	}
	return c.PutByHash(hash, analysis)
}

func (c *ContentCache) PutByHash(hash string, analysis interface{}) bool {
	data, err := json.Marshal(analysis)
	if err != nil {
		c.logger.Warn("CACHE", "Marshal failed, entry not saved", map[string]interface{}{
			"hash":  hash,
			"error": err.Error(),
		})
		return false
	}

	if err := os.WriteFile(c.entryPath(hash), data, 0o644); err != nil {
		c.logger.Warn("CACHE", "Write failed, entry not saved", map[string]interface{}{
			"hash":  hash,
			"error": err.Error(),
		})
		return false
	}
	return true
}

func (c *ContentCache) entryPath(hash string) string {
	return filepath.Join(c.dir, hash+".json")
}
