// Package testutil builds throwaway databases and test content for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nikitalevshuk/university-tests/backend/config"
	"github.com/nikitalevshuk/university-tests/backend/utils"
)

// NewDB returns a migrated in-memory sqlite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBPath:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}

	db, err := utils.InitDB(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := utils.Migrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Config returns a configuration suitable for in-process servers.
func Config(testsDir string) *config.Config {
	return &config.Config{
		DBDriver:       "sqlite",
		JWTSecret:      "testsecret",
		TokenTTL:       30 * time.Minute,
		BcryptCost:     4,
		ServerPort:     "0",
		CORSOrigins:    "http://localhost:5173",
		CookieSameSite: "Lax",
		TestsDir:       testsDir,
		LogLevel:       "disabled",
	}
}

// WriteTestFile writes a test content file into dir.
func WriteTestFile(t testing.TB, dir, name, title string, questions ...string) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[\n  {%q: %q, %q: %q}", "title", title, "description", title+" description")
	for i, q := range questions {
		fmt.Fprintf(&b, ",\n  {%q: %d, %q: %q}", "id", i+1, "question", q)
	}
	b.WriteString("\n]\n")
	if err := os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}
