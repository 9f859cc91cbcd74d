package mysql

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/bryanwahyu/legalmind/internal/infra/db"
)

const schemaDocuments = `
CREATE TABLE IF NOT EXISTS document_texts (
  text_hash CHAR(64) NOT NULL PRIMARY KEY,
  content   MEDIUMTEXT NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const schemaAnalyses = `
CREATE TABLE IF NOT EXISTS analyses (
  id              BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  created_at      DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
  text_hash       CHAR(64) NOT NULL,
  original_length INT NOT NULL,
  summary         TEXT NOT NULL,
  processing_time DOUBLE NOT NULL,
  INDEX idx_analyses_created_at (created_at, id),
  CONSTRAINT fk_analyses_document FOREIGN KEY (text_hash) REFERENCES document_texts (text_hash)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Dialect for MySQL / MariaDB
func Dialect() db.Dialect {
	return db.Dialect{
		Name:           "mysql",
		Driver:         "mysql",
		Schema:         []string{schemaDocuments, schemaAnalyses},
		InsertDocument: `INSERT IGNORE INTO document_texts (text_hash, content) VALUES (?, ?)`,
		Placeholder:    db.Question,
	}
}

// DSN builds a go-sql-driver DSN with parseTime so created_at scans as time.Time
func DSN(host string, port int, user, password, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host
	if port > 0 {
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
	cfg.DBName = name
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}
