package chat

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"NinesolChat/app/memory"
	"NinesolChat/app/rag"
	"NinesolChat/app/storage"
)

// Session is one conversation: a display log of everything shown to the user,
// the conversation memory fed to the chain, and its durable record. The mutex
// serializes turns, one question is in flight per session at a time.
type Session struct {
	ID string

	mu      sync.Mutex
	chain   *rag.Chain
	memory  *memory.Memory
	display []memory.Message
	store   storage.Interface
}

// Ask runs one chat turn. The user message lands in the display log up front;
// on success the question/answer pair is appended to conversation memory and
// persisted. A failed turn shows an inline error answer and leaves memory and
// storage untouched, so a bad turn never poisons the transcript.
func (s *Session) Ask(ctx context.Context, question string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.display = append(s.display, memory.Message{Role: memory.RoleUser, Content: question})

	answer, err := s.chain.Run(ctx, question)
	if err != nil {
		log.Printf("⚠️ Turn failed in session %s: %v", s.ID, err)
		answer = fmt.Sprintf("Error: %v", err)
		s.display = append(s.display, memory.Message{Role: memory.RoleAssistant, Content: answer})
		return answer
	}

	s.memory.Append(memory.RoleUser, question)
	s.memory.Append(memory.RoleAssistant, answer)
	s.display = append(s.display, memory.Message{Role: memory.RoleAssistant, Content: answer})
	s.persist(ctx, question, answer)

	return answer
}

func (s *Session) persist(ctx context.Context, question, answer string) {
	if s.store == nil {
		return
	}
	now := time.Now()
	for _, r := range []storage.Record{
		{SessionID: s.ID, Role: memory.RoleUser, Content: question, CreatedAt: now},
		{SessionID: s.ID, Role: memory.RoleAssistant, Content: answer, CreatedAt: now},
	} {
		if err := s.store.SaveMessage(ctx, r); err != nil {
			log.Printf("⚠️ Error persisting message for session %s: %v", s.ID, err)
		}
	}
}

// Reset clears the display log, the conversation memory and the persisted
// history together. They are one session-scoped unit; clearing only the
// visible transcript would leave the model remembering turns the user can no
// longer see.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.display = nil
	s.memory.Reset()
	if s.store != nil {
		if err := s.store.ClearSession(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Display returns a copy of the visible transcript, error answers included.
func (s *Session) Display() []memory.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]memory.Message, len(s.display))
	copy(out, s.display)
	return out
}

// Turns reports how many messages conversation memory holds.
func (s *Session) Turns() int {
	return s.memory.Len()
}
