package sqlite

import (
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/bryanwahyu/legalmind/internal/infra/db"
)

// DefaultPath is the single local database file
const DefaultPath = "data/contract_analytics.db"

const schemaDocuments = `
CREATE TABLE IF NOT EXISTS document_texts (
  text_hash TEXT PRIMARY KEY,
  content   TEXT NOT NULL
)`

// created_at keeps milliseconds so ordering by time is meaningful within a second
const schemaAnalyses = `
CREATE TABLE IF NOT EXISTS analyses (
  id              INTEGER PRIMARY KEY AUTOINCREMENT,
  created_at      DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
  text_hash       TEXT NOT NULL REFERENCES document_texts (text_hash),
  original_length INTEGER NOT NULL,
  summary         TEXT NOT NULL,
  processing_time REAL NOT NULL
)`

const schemaIndex = `CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC, id DESC)`

func Dialect() db.Dialect {
	return db.Dialect{
		Name:           "sqlite",
		Driver:         "sqlite",
		Schema:         []string{schemaDocuments, schemaAnalyses, schemaIndex},
		InsertDocument: `INSERT OR IGNORE INTO document_texts (text_hash, content) VALUES (?, ?)`,
		Placeholder:    db.Question,
		Prepare:        ensureDir,
	}
}

// DSN for a database file with WAL, a busy timeout and foreign keys on.
func DSN(path string) string {
	if path == "" {
		path = DefaultPath
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func ensureDir(dsn string) error {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" || p == ":memory:" {
		return nil
	}
	dir := filepath.Dir(p)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
