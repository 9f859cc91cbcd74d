package postgres

import (
	"net"
	"net/url"
	"strconv"

	_ "github.com/lib/pq" // register postgres driver

	"github.com/bryanwahyu/legalmind/internal/infra/db"
)

const schemaDocuments = `
CREATE TABLE IF NOT EXISTS document_texts (
  text_hash TEXT PRIMARY KEY,
  content   TEXT NOT NULL
)`

const schemaAnalyses = `
CREATE TABLE IF NOT EXISTS analyses (
  id              BIGSERIAL PRIMARY KEY,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
  text_hash       TEXT NOT NULL REFERENCES document_texts (text_hash),
  original_length INTEGER NOT NULL,
  summary         TEXT NOT NULL,
  processing_time DOUBLE PRECISION NOT NULL
)`

const schemaIndex = `CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC, id DESC)`

// Dialect for PostgreSQL through lib/pq
func Dialect() db.Dialect {
	return db.Dialect{
		Name:   "postgres",
		Driver: "postgres",
		Schema: []string{schemaDocuments, schemaAnalyses, schemaIndex},
		InsertDocument: `INSERT INTO document_texts (text_hash, content) VALUES (?, ?)
ON CONFLICT (text_hash) DO NOTHING`,
		Placeholder: db.Dollar,
	}
}

// DSN builds a postgres:// URL; an empty sslMode means "disable".
func DSN(host string, port int, user, password, name, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	if port > 0 {
		host = net.JoinHostPort(host, strconv.Itoa(port))
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host,
		Path:     "/" + name,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}
