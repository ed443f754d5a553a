// database/dialect.go
package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// dialect holds the statements that differ between PostgreSQL and MySQL.
// Statements use ? placeholders and are rebound per driver.
type dialect struct {
	createTable string
	insert      string
	dropTable   string
}

// A btree entry is limited to about 2.7 KB, so (title, link) uniqueness is
// enforced on a stored digest of the identity key rather than the raw text.
// The untargeted ON CONFLICT also covers tables created with UNIQUE (title, link).
var postgresDialect = dialect{
	createTable: `
		CREATE TABLE IF NOT EXISTS proposals (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			agency TEXT,
			from_date TEXT,
			deadline TEXT,
			link TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			identity_hash TEXT GENERATED ALWAYS AS (md5(title || '|' || link)) STORED,
			CONSTRAINT uq_proposals_identity UNIQUE (identity_hash)
		)`,
	insert: `
		INSERT INTO proposals (title, agency, from_date, deadline, link)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
	dropTable: `DROP TABLE IF EXISTS proposals`,
}

// MySQL cannot index two TEXT columns directly either, so it uses the same
// approach with SHA2.
var mysqlDialect = dialect{
	createTable: `
		CREATE TABLE IF NOT EXISTS proposals (
			id INT AUTO_INCREMENT PRIMARY KEY,
			title TEXT NOT NULL,
			agency TEXT,
			from_date TEXT,
			deadline TEXT,
			link TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			identity_hash CHAR(64) AS (SHA2(CONCAT(title, '|', link), 256)) STORED,
			UNIQUE KEY uq_proposals_identity (identity_hash)
		) CHARACTER SET utf8mb4`,
	insert: `
		INSERT INTO proposals (title, agency, from_date, deadline, link)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE title = title`,
	dropTable: `DROP TABLE IF EXISTS proposals`,
}

func dialectFor(driver string) dialect {
	if driver == "mysql" {
		return mysqlDialect
	}
	return postgresDialect
}

const (
	pqUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
)

// isUniqueViolation reports whether err is the store refusing a duplicate
// (title, link) pair.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return false
}
