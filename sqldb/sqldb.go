// Package sqldb implements the core store interfaces on database/sql.
// Statements are prepared once at construction. The schema is created on
// the fly, so a fresh database file just works.
package sqldb

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(fmt.Sprintf("can't prepare sql statement: %v: %s", err, query))
	}
	return stmt
}

func newID() string {
	return uuid.NewString()
}

// encodeMeta marshals a metadata map for a TEXT column. Nil maps become
// the empty string.
func encodeMeta(meta map[string]string) (string, error) {
	if len(meta) == 0 {
		return "", nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMeta(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(s), &meta); err != nil {
		return nil, err
	}
	return meta, nil
}
