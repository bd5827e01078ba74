// Package prompt holds the fixed instruction template rendered before every
// generation call. The instruction text is part of the system's behavioral
// contract (grounding rule + exact fallback sentence) and must never be
// altered by callers.
package prompt

import "strings"

// FallbackSentence is the exact refusal the model is instructed to produce
// when the answer is not derivable from context and history.
const FallbackSentence = `I'm sorry, I can't help you with answer, Ask me about Ninesol Technologies`

const template = `
You are an AI assistant chatbot for Ninesol Technologies.

Use ONLY the provided context and conversation history to answer.
If the answer is not present, say:
"I'm sorry, I can't help you with answer, Ask me about Ninesol Technologies"


chat_history:
{chat_history}

Context:
{context}

Question:
{question}

Answer concisely, accurately and Professionaly.
`

// Template renders the three named slots into the fixed instruction text.
// Plain substitution, no escaping, deterministic byte-for-byte.
type Template struct{}

func New() *Template {
	return &Template{}
}

func (t *Template) Render(chatHistory, context, question string) string {
	r := strings.NewReplacer(
		"{chat_history}", chatHistory,
		"{context}", context,
		"{question}", question,
	)
	return r.Replace(template)
}
