package memory

import (
	"strings"
	"sync"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Memory is an append-only, insertion-ordered log of conversation turns for a
// single session. It grows without bound for the lifetime of the session; the
// durable record lives in storage, not here. One Memory per session, always
// constructor-injected, never shared across sessions.
type Memory struct {
	mu       sync.RWMutex
	messages []Message
}

func New() *Memory {
	return &Memory{}
}

func (m *Memory) Append(role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Role: role, Content: content})
}

// Render flattens the log into one "role: content" line per message. The
// format is stable: the prompt relies on it to mark turn boundaries.
func (m *Memory) Render() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sb strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
	}
	return sb.String()
}

// Messages returns a copy of the log.
func (m *Memory) Messages() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
