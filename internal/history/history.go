// Package history provides SQLite-based persistence for chat messages.
// The database is created on first use; if opening it or executing queries
// fails, the store falls back to in-memory storage so a broken disk never
// takes the agent down.
package history

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/trungvq/workmate/internal/logger"
)

const schema = `CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT,
	role TEXT,
	content TEXT,
	tool_call_id TEXT,
	tool_calls TEXT,
	created_at DATETIME
);`

// Store persists session messages. A single Store is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	mem  []Message // in-memory fallback
	db   *sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path. Failures are logged and
// degrade the store to memory-only rather than being returned.
func Open(path string) *Store {
	s := &Store{path: path}
	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000&_fk=1")
	if err != nil {
		logger.L.Warn("sqlite open failed; using in-memory history", "path", path, "error", err)
		return s
	}
	if _, err := db.Exec(schema); err != nil {
		logger.L.Warn("sqlite table creation failed; using in-memory history", "path", path, "error", err)
		db.Close()
		return s
	}
	s.db = db
	logger.L.Info("sqlite history DB initialized", "path", path)
	return s
}

// Save persists a message. CreatedAt is stamped when zero. The SQLite write is
// best-effort; the in-memory copy always succeeds.
func (s *Store) Save(msg Message) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if s.db != nil {
		_, err := s.db.Exec(
			`INSERT INTO messages (session_id, role, content, tool_call_id, tool_calls, created_at) VALUES (?,?,?,?,?,?);`,
			msg.SessionID, msg.Role, msg.Content, msg.ToolCallID, msg.ToolCalls, msg.CreatedAt)
		if err != nil {
			logger.L.Error("failed to store message in sqlite; falling back to memory", "error", err)
		}
	}

	s.mu.Lock()
	s.mem = append(s.mem, msg)
	s.mu.Unlock()
}

// List returns all messages of a session in chronological order.
func (s *Store) List(sessionID string) []Message {
	var out []Message
	if s.db != nil {
		rows, err := s.db.Query(
			`SELECT id, session_id, role, content, tool_call_id, tool_calls, created_at FROM messages WHERE session_id = ? ORDER BY id ASC;`,
			sessionID)
		if err == nil {
			defer rows.Close()
			for rows.Next() {
				var m Message
				if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.ToolCallID, &m.ToolCalls, &m.CreatedAt); err == nil {
					out = append(out, m)
				}
			}
			return out
		}
		logger.L.Error("sqlite query failed; reading from memory", "error", err)
	}

	s.mu.Lock()
	for _, m := range s.mem {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	s.mu.Unlock()
	return out
}

// Close releases the underlying database. Memory-only stores close to a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
