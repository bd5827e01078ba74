package chat

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"NinesolChat/app/memory"
	"NinesolChat/app/rag"
	"NinesolChat/app/storage"
)

// ChainFactory builds a chain bound to one session's conversation memory.
type ChainFactory func(history rag.History) *rag.Chain

// Manager owns the live sessions. Each session gets its own memory and chain;
// nothing conversational is shared across sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  ChainFactory
	store    storage.Interface
}

func NewManager(factory ChainFactory, store storage.Interface) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		store:    store,
	}
}

// GetOrCreate returns the session for id, creating (and rehydrating from
// storage) when unknown. An empty id starts a fresh session with a generated id.
func (m *Manager) GetOrCreate(ctx context.Context, id string) *Session {
	if id == "" {
		id = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}

	mem := memory.New()
	s := &Session{
		ID:     id,
		chain:  m.factory(mem),
		memory: mem,
		store:  m.store,
	}
	m.rehydrate(ctx, s)
	m.sessions[id] = s
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) rehydrate(ctx context.Context, s *Session) {
	if m.store == nil {
		return
	}
	records, err := m.store.GetHistoryBySessionID(ctx, s.ID)
	if err != nil {
		log.Printf("⚠️ Error rehydrating session %s: %v", s.ID, err)
		return
	}
	for _, r := range records {
		s.memory.Append(r.Role, r.Content)
		s.display = append(s.display, memory.Message{Role: r.Role, Content: r.Content})
	}
	if len(records) > 0 {
		log.Printf("♻️ Rehydrated session %s with %d messages", s.ID, len(records))
	}
}

// OneShot answers a single question with no conversational state, through the
// chain's fail-soft boundary.
func (m *Manager) OneShot(ctx context.Context, question string) string {
	return m.factory(memory.New()).Answer(ctx, question)
}
