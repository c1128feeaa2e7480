package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/arena/internal/agent"
	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/llm"
)

// SQLiteSessionStore implements agent.SessionStore backed by SQLite.
type SQLiteSessionStore struct {
	db *DB
}

var _ agent.SessionStore = (*SQLiteSessionStore)(nil)

// NewSQLiteSessionStore creates a session store using the given database.
func NewSQLiteSessionStore(db *DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db}
}

// GetOrCreate finds an existing session by key or creates a new one.
func (s *SQLiteSessionStore) GetOrCreate(key domain.SessionKey) *domain.Session {
	keyStr := key.String()

	var sess domain.Session
	var createdAt, updatedAt string
	err := s.db.sql.QueryRow(
		`SELECT id, surface, client_id, chat_id, created_at, updated_at
		 FROM sessions WHERE key_str = ?`, keyStr,
	).Scan(
		&sess.ID, &sess.Key.Surface, &sess.Key.ClientID, &sess.Key.ChatID,
		&createdAt, &updatedAt,
	)

	if err == nil {
		sess.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		sess.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
		return &sess
	}

	sess = domain.Session{
		ID:        uuid.New().String(),
		Key:       key,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err = s.db.sql.Exec(
		`INSERT INTO sessions (id, key_str, surface, client_id, chat_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, keyStr, key.Surface, key.ClientID, key.ChatID,
		sess.CreatedAt.Format(time.DateTime), sess.UpdatedAt.Format(time.DateTime),
	)
	if err != nil {
		s.db.log.Error().Err(err).Str("key", keyStr).Msg("failed to create session")
	}

	return &sess
}

// Get returns a session by ID with its turns loaded, or nil if not found.
func (s *SQLiteSessionStore) Get(id string) *domain.Session {
	var sess domain.Session
	var createdAt, updatedAt string

	err := s.db.sql.QueryRow(
		`SELECT id, surface, client_id, chat_id, created_at, updated_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(
		&sess.ID, &sess.Key.Surface, &sess.Key.ClientID, &sess.Key.ChatID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil
	}

	sess.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	sess.Turns = s.loadTurns(id)
	return &sess
}

// Append adds a turn to a session.
func (s *SQLiteSessionStore) Append(sessionID string, turn domain.Turn) {
	var filesJSON sql.NullString
	if len(turn.Files) > 0 {
		if data, err := json.Marshal(turn.Files); err == nil {
			filesJSON = sql.NullString{String: string(data), Valid: true}
		}
	}

	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO turns (session_id, role, content, timestamp, tool_name, tool_args, is_error, files)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, turn.Role, turn.Content, ts.Format(time.DateTime),
		turn.ToolName, turn.ToolArgs, boolToInt(turn.IsError), filesJSON,
	)
	if err != nil {
		s.db.log.Error().Err(err).Str("session", sessionID).Msg("failed to append turn")
		return
	}

	_, _ = s.db.sql.Exec(
		`UPDATE sessions SET updated_at = ? WHERE id = ?`,
		time.Now().Format(time.DateTime), sessionID,
	)
}

// History returns the session's turns converted to LLM messages.
func (s *SQLiteSessionStore) History(sessionID string) []llm.Message {
	return agent.TurnsToMessages(s.loadTurns(sessionID))
}

// List returns all session IDs, most recently active first.
func (s *SQLiteSessionStore) List() []string {
	rows, err := s.db.sql.Query(`SELECT id FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// loadTurns loads all turns for a session in insertion order.
func (s *SQLiteSessionStore) loadTurns(sessionID string) []domain.Turn {
	rows, err := s.db.sql.Query(
		`SELECT role, content, timestamp, tool_name, tool_args, is_error, files
		 FROM turns WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var turn domain.Turn
		var ts string
		var isError int
		var filesJSON sql.NullString

		if err := rows.Scan(&turn.Role, &turn.Content, &ts, &turn.ToolName,
			&turn.ToolArgs, &isError, &filesJSON); err != nil {
			continue
		}
		turn.Timestamp, _ = time.Parse(time.DateTime, ts)
		turn.IsError = isError != 0

		if filesJSON.Valid && filesJSON.String != "" {
			_ = json.Unmarshal([]byte(filesJSON.String), &turn.Files)
		}

		turns = append(turns, turn)
	}
	return turns
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
