package rag

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"NinesolChat/app/memory"
	"NinesolChat/app/models"
	"NinesolChat/app/prompt"
)

type stubRetriever struct {
	docs []Document
	err  error
}

func (s *stubRetriever) Search(_ context.Context, _ string, _, _ int) ([]Document, error) {
	return s.docs, s.err
}

func TestChainAssemblesPrompt(t *testing.T) {
	retriever := &stubRetriever{docs: []Document{
		{Content: "Ninesol was founded in 2015."},
		{Content: "Ninesol builds AI products."},
	}}
	mem := memory.New()
	mem.Append(memory.RoleUser, "hello")
	mem.Append(memory.RoleAssistant, "hi, ask me about Ninesol")

	generator := &models.MockGenerator{}
	var captured string
	generator.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.String(1) }).
		Return(&models.Generation{Content: "Founded in 2015."}, nil)

	chain := NewChain(retriever, generator, mem, 3, 10)
	answer, err := chain.Run(context.Background(), "When was Ninesol founded?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Founded in 2015." {
		t.Fatalf("unexpected answer: %q", answer)
	}

	if !strings.Contains(captured, "Ninesol was founded in 2015.\n\nNinesol builds AI products.") {
		t.Fatal("documents not joined blank-line separated in retrieval order")
	}
	if !strings.Contains(captured, "user: hello\nassistant: hi, ask me about Ninesol") {
		t.Fatal("transcript missing from prompt")
	}
	if !strings.Contains(captured, "When was Ninesol founded?") {
		t.Fatal("question not passed through verbatim")
	}
	if !strings.Contains(captured, prompt.FallbackSentence) {
		t.Fatal("behavioral instructions missing from prompt")
	}
}

func TestChainSnapshotExcludesCurrentQuestion(t *testing.T) {
	mem := memory.New()
	mem.Append(memory.RoleUser, "first question")
	mem.Append(memory.RoleAssistant, "first answer")

	generator := &models.MockGenerator{}
	var captured string
	generator.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.String(1) }).
		Return(&models.Generation{Content: "ok"}, nil)

	chain := NewChain(&stubRetriever{}, generator, mem, 3, 10)
	if _, err := chain.Run(context.Background(), "second question"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	historyPart := captured[:strings.Index(captured, "Question:")]
	if strings.Contains(historyPart, "second question") {
		t.Fatal("current question leaked into its own transcript snapshot")
	}
	if !strings.Contains(historyPart, "first question") {
		t.Fatal("prior turn missing from transcript")
	}
}

func TestChainEmptyRetrievalStillCompletes(t *testing.T) {
	generator := &models.MockGenerator{}
	var captured string
	generator.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.String(1) }).
		Return(&models.Generation{Content: prompt.FallbackSentence}, nil)

	chain := NewChain(&stubRetriever{docs: nil}, generator, memory.New(), 3, 10)
	answer, err := chain.Run(context.Background(), "unanswerable")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != prompt.FallbackSentence {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if !strings.Contains(captured, "Context:\n\n") {
		t.Fatal("empty retrieval must render an empty context string, not omit the slot")
	}
}

func TestChainAnswerContainsErrors(t *testing.T) {
	errorPattern := regexp.MustCompile(`^Error: .*`)

	t.Run("generation_failure", func(t *testing.T) {
		generator := &models.MockGenerator{}
		generator.On("Generate", mock.Anything, mock.Anything).
			Return(nil, &models.GenerationError{Err: errors.New("service unavailable")})

		mem := memory.New()
		chain := NewChain(&stubRetriever{}, generator, mem, 3, 10)
		answer := chain.Answer(context.Background(), "q")
		if !errorPattern.MatchString(answer) {
			t.Fatalf("unexpected answer: %q", answer)
		}
		if mem.Len() != 0 {
			t.Fatal("failed turn must leave memory unmutated")
		}
	})

	t.Run("retrieval_failure", func(t *testing.T) {
		retriever := &stubRetriever{err: &VectorStoreError{Err: errors.New("unreachable")}}
		generator := &models.MockGenerator{}

		chain := NewChain(retriever, generator, memory.New(), 3, 10)
		answer := chain.Answer(context.Background(), "q")
		if !errorPattern.MatchString(answer) {
			t.Fatalf("unexpected answer: %q", answer)
		}
		generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})
}

func TestChainNormalizesEmptyGenerations(t *testing.T) {
	cases := []struct {
		name string
		gen  *models.Generation
		want string
	}{
		{"plain_text", &models.Generation{Content: "an answer"}, "an answer"},
		{"structured_output", &models.Generation{Structured: true, Output: "structured"}, "structured"},
		{"empty_content", &models.Generation{}, NoResponseFallback},
		{"empty_structured", &models.Generation{Structured: true}, NoResponseFallback},
	}
	for _, cse := range cases {
		t.Run(cse.name, func(t *testing.T) {
			generator := &models.MockGenerator{}
			generator.On("Generate", mock.Anything, mock.Anything).Return(cse.gen, nil)

			chain := NewChain(&stubRetriever{}, generator, memory.New(), 3, 10)
			answer, err := chain.Run(context.Background(), "q")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if answer != cse.want {
				t.Fatalf("got %q, want %q", answer, cse.want)
			}
		})
	}
}

func TestJoinDocs(t *testing.T) {
	if got := JoinDocs(nil); got != "" {
		t.Fatalf("no docs must join to empty string, got %q", got)
	}
	docs := []Document{{Content: "a"}, {Content: "b"}}
	if got := JoinDocs(docs); got != "a\n\nb" {
		t.Fatalf("unexpected join: %q", got)
	}
}
