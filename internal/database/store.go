package database

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
)

// Store is the entity access layer. All reads and writes to application
// entities go through it; multi-statement mutations run inside SQL
// transactions, and callers serialize concurrent mutations of the same
// entity with Locks.
type Store struct {
	db    *sql.DB
	Locks *KeyedMutex
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, Locks: NewKeyedMutex()}
}

func newID() string {
	return uuid.NewString()
}

// toJSON marshals v for storage in a TEXT column. Marshal failures cannot
// happen for the slice/struct types we store, so they degrade to "[]".
func toJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func fromJSON(s string, v interface{}) {
	if s == "" {
		return
	}
	_ = json.Unmarshal([]byte(s), v)
}
