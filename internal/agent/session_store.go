package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/llm"
)

// SessionStore manages conversation sessions.
type SessionStore interface {
	// GetOrCreate finds an existing session by key or creates a new one.
	GetOrCreate(key domain.SessionKey) *domain.Session

	// Get returns a session by ID, or nil if not found.
	Get(id string) *domain.Session

	// Append adds a turn to a session.
	Append(sessionID string, turn domain.Turn)

	// History returns the session's turns as LLM messages.
	History(sessionID string) []llm.Message

	// List returns all session IDs.
	List() []string
}

// MemorySessionStore is an in-memory SessionStore implementation.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session // id → session
	byKey    map[string]string          // key string → session id
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.Session),
		byKey:    make(map[string]string),
	}
}

func (s *MemorySessionStore) GetOrCreate(key domain.SessionKey) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyStr := key.String()
	if id, ok := s.byKey[keyStr]; ok {
		if sess, ok := s.sessions[id]; ok {
			return sess
		}
	}

	sess := &domain.Session{
		ID:        uuid.New().String(),
		Key:       key,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.sessions[sess.ID] = sess
	s.byKey[keyStr] = sess.ID
	return sess
}

func (s *MemorySessionStore) Get(id string) *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

func (s *MemorySessionStore) Append(sessionID string, turn domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.Turns = append(sess.Turns, turn)
		sess.UpdatedAt = time.Now()
	}
}

func (s *MemorySessionStore) History(sessionID string) []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	return TurnsToMessages(sess.Turns)
}

func (s *MemorySessionStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// TurnsToMessages converts stored turns to the LLM conversation shape.
// Model turns carrying a tool call and tool result turns map onto the
// native function calling structures.
func TurnsToMessages(turns []domain.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleModel:
			msg := llm.Message{Role: llm.RoleModel, Content: t.Content}
			if t.ToolName != "" {
				msg.ToolCalls = []llm.ToolCall{{Name: t.ToolName, Input: t.ToolArgs}}
			}
			msgs = append(msgs, msg)

		case domain.RoleTool:
			msgs = append(msgs, llm.Message{
				Role: llm.RoleTool,
				ToolResults: []llm.ToolResult{{
					Name:    t.ToolName,
					Content: t.Content,
					IsError: t.IsError,
				}},
			})

		default:
			msg := llm.Message{Role: llm.RoleUser, Content: t.Content}
			for _, f := range t.Files {
				msg.Files = append(msg.Files, llm.FileRef{URI: f.URI, MimeType: f.MimeType})
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
