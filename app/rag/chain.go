package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"NinesolChat/app/models"
	"NinesolChat/app/prompt"
)

// NoResponseFallback is returned when the provider completes a call without
// producing any answer text.
const NoResponseFallback = "No response generated."

// History renders the conversation so far into a flat transcript.
type History interface {
	Render() string
}

// Chain is the retrieval-augmented answering pipeline: fetch relevant context
// and the transcript, fill the prompt template, generate, normalize. One Chain
// per session; the chain never mutates the session's memory, that is the
// caller's job after a successful turn.
type Chain struct {
	retriever Retriever
	model     models.Generator
	template  *prompt.Template
	history   History
	k         int
	fetchK    int
}

func NewChain(retriever Retriever, model models.Generator, history History, k, fetchK int) *Chain {
	return &Chain{
		retriever: retriever,
		model:     model,
		template:  prompt.New(),
		history:   history,
		k:         k,
		fetchK:    fetchK,
	}
}

// Run executes one question end to end and reports failures to the caller.
// The retrieval and the transcript snapshot have no data dependency, so they
// run concurrently and join before prompt assembly.
func (c *Chain) Run(ctx context.Context, question string) (string, error) {
	var (
		wg          sync.WaitGroup
		docs        []Document
		retrieveErr error
		transcript  string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		docs, retrieveErr = c.retriever.Search(ctx, question, c.k, c.fetchK)
	}()
	go func() {
		defer wg.Done()
		transcript = c.history.Render()
	}()
	wg.Wait()

	if retrieveErr != nil {
		return "", retrieveErr
	}

	rendered := c.template.Render(transcript, JoinDocs(docs), question)

	generation, err := c.model.Generate(ctx, rendered)
	if err != nil {
		return "", err
	}

	return normalizeGeneration(generation), nil
}

// Answer is the fail-soft boundary: any pipeline failure comes back as an
// inline "Error: ..." answer instead of an error, so a chat turn never crashes
// its caller.
func (c *Chain) Answer(ctx context.Context, question string) string {
	answer, err := c.Run(ctx, question)
	if err != nil {
		log.Printf("⚠️ Chain failed for question %q: %v", question, err)
		return fmt.Sprintf("Error: %v", err)
	}
	return answer
}

// JoinDocs concatenates document contents in retrieval order, blank-line
// separated. No documents renders as an empty string.
func JoinDocs(docs []Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return strings.Join(parts, "\n\n")
}

func normalizeGeneration(g *models.Generation) string {
	if text := g.Text(); text != "" {
		return text
	}
	return NoResponseFallback
}
