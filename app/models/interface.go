package models

import "context"

// Generator produces a completion for a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Generation, error)
}

// Embedder turns text into a dense vector. The dimension is fixed by the
// configured model and opaque to callers.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Generation is the normalized result of one completion call. Exactly one of
// Output (structured channel) or Content (plain text) carries the answer;
// Reasoning holds the model's parsed-out reasoning channel and is never shown
// to the user.
type Generation struct {
	Structured bool
	Output     string
	Content    string
	Reasoning  string
}

// Text returns the answer channel of the generation.
func (g *Generation) Text() string {
	if g == nil {
		return ""
	}
	if g.Structured {
		return g.Output
	}
	return g.Content
}
