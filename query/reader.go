package query

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bignyap/go-sqlhelper/memcache"
)

// Reader loads SQL files, reusing the contents while the file's size and
// modification time are unchanged.
type Reader struct {
	cache *memcache.Client
}

type cachedScript struct {
	modTime time.Time
	size    int64
	text    string
}

func NewReader(cache *memcache.Client) *Reader {
	if cache == nil {
		cache = memcache.New(memcache.DefaultConfig())
	}
	return &Reader{cache: cache}
}

var defaultReader = NewReader(nil)

// ReadFile returns the text of the SQL file at path.
func ReadFile(path string) (string, error) {
	return defaultReader.Read(path)
}

func (r *Reader) Read(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("read sql file %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("read sql file %s: %w", path, err)
	}

	if v, ok := r.cache.Get(abs); ok {
		if s, ok := v.(cachedScript); ok && s.size == info.Size() && s.modTime.Equal(info.ModTime()) {
			return s.text, nil
		}
		r.cache.Delete(abs)
	}

	v, err := r.cache.GetOrLoad(abs, func() (interface{}, error) {
		b, err := os.ReadFile(abs)
		if err != nil {
			return nil, err
		}
		return cachedScript{modTime: info.ModTime(), size: info.Size(), text: string(b)}, nil
	})
	if err != nil {
		return "", fmt.Errorf("read sql file %s: %w", path, err)
	}
	return v.(cachedScript).text, nil
}
