// Package testloader reads test content from the JSON files the catalog
// points at. A file is an array: element 0 holds the title and
// description, the rest are questions. Comments and trailing commas are
// tolerated.
package testloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultTitle       = "Неизвестный тест"
	defaultDescription = "Описание недоступно"
)

// Content is the parsed form of a test file.
type Content struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []map[string]any `json:"questions"`
	// ETag fingerprints the file as read, quoted for the HTTP header.
	ETag string `json:"-"`
}

type Loader struct {
	dir   string
	cache *bigcache.BigCache
	log   zerolog.Logger
}

// New returns a loader for files under dir. Parsed files are cached for
// ttl; a zero ttl disables caching.
func New(dir string, ttl time.Duration, logger zerolog.Logger) (*Loader, error) {
	l := &Loader{
		dir: dir,
		log: logger.With().Str("component", "testloader").Logger(),
	}
	if ttl <= 0 {
		return l, nil
	}

	config := bigcache.DefaultConfig(ttl)
	config.Shards = 16
	config.MaxEntriesInWindow = 256
	config.MaxEntrySize = 16 * 1024
	config.HardMaxCacheSize = 32
	config.Verbose = false
	cache, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("testloader: create cache: %w", err)
	}
	l.cache = cache
	return l, nil
}

func (l *Loader) Close() error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Close()
}

// Load returns the content of filename. ok is false when the file is
// missing, unreadable or not a JSON array of objects; the cause is logged.
func (l *Loader) Load(filename string) (*Content, bool) {
	data, err := l.read(filename)
	if err != nil {
		l.log.Warn().Err(err).Str("filename", filename).Msg("test file unavailable")
		return nil, false
	}

	content, err := parse(data)
	if err != nil {
		l.log.Warn().Err(err).Str("filename", filename).Msg("test file malformed")
		return nil, false
	}
	content.ETag = fmt.Sprintf(`"%016x"`, xxhash.Sum64(data))
	return content, true
}

// Title resolves the display title for filename, falling back to a name
// derived from the filename when the file cannot be loaded.
func (l *Loader) Title(filename string) string {
	if content, ok := l.Load(filename); ok {
		return content.Title
	}
	return TitleFromFilename(filename)
}

// TitleFromFilename turns "stress_test.json" into "Stress Test".
func TitleFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.ReplaceAll(name, "_", " ")
	return cases.Title(language.Und).String(name)
}

func (l *Loader) read(filename string) ([]byte, error) {
	if l.cache != nil {
		if data, err := l.cache.Get(filename); err == nil {
			return data, nil
		} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
			l.log.Debug().Err(err).Msg("cache read failed")
		}
	}

	// Only plain names are served; the catalog never points into subdirectories.
	path := filepath.Join(l.dir, filepath.Base(filename))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data := jsonc.ToJSON(raw)

	if l.cache != nil {
		if err := l.cache.Set(filename, data); err != nil {
			l.log.Debug().Err(err).Str("filename", filename).Msg("not cached")
		}
	}
	return data, nil
}

func parse(data []byte) (*Content, error) {
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("empty test file")
	}

	meta := items[0]
	content := &Content{
		Title:       stringOr(meta["title"], defaultTitle),
		Description: stringOr(meta["description"], defaultDescription),
		Questions:   []map[string]any{},
	}
	for _, item := range items[1:] {
		if truthy(item["question"]) {
			content.Questions = append(content.Questions, item)
		}
	}
	return content, nil
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func truthy(v any) bool {
	switch q := v.(type) {
	case nil:
		return false
	case string:
		return q != ""
	case bool:
		return q
	case float64:
		return q != 0
	case []any:
		return len(q) > 0
	case map[string]any:
		return len(q) > 0
	default:
		return true
	}
}
