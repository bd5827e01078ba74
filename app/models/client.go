package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"NinesolChat/app/utils/restclient"
)

const completionsEndpoint = "/v1/chat/completions"

// reasoningFormatParsed asks the provider to return the model's reasoning in a
// separate message field instead of inlining it into the answer text.
const reasoningFormatParsed = "parsed"

var _ Generator = &GroqClient{}

// GroqClient calls an OpenAI-compatible chat-completions endpoint. Transient
// failures are retried locally with exponential backoff; there is no
// client-side timeout beyond the caller's context.
type GroqClient struct {
	restClient  restclient.Interface
	model       string
	temperature float64
	maxTokens   int
	maxRetries  int
}

type GroqOptions struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int // 0 = unbounded, omitted from the request
	MaxRetries  int
}

func NewGroqClient(opts GroqOptions) *GroqClient {
	headers := map[string]string{"Authorization": "Bearer " + opts.APIKey}
	return &GroqClient{
		restClient:  restclient.NewRestClient(opts.BaseURL, headers),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		maxRetries:  opts.MaxRetries,
	}
}

func (gc *GroqClient) Generate(ctx context.Context, prompt string) (*Generation, error) {
	payload := requestPayload{
		Model:           gc.model,
		Messages:        []Message{{Role: "user", Content: prompt}},
		Temperature:     gc.temperature,
		MaxTokens:       gc.maxTokens,
		ReasoningFormat: reasoningFormatParsed,
	}

	response, err := gc.sendRequestAndParse(ctx, payload)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	if len(response.Choices) == 0 {
		return nil, &GenerationError{Err: errors.New("empty choices in completion response")}
	}

	msg := response.Choices[0].Message
	if msg.Reasoning != "" {
		log.Printf("🧠 Dropped %d bytes of reasoning for model %s", len(msg.Reasoning), response.Model)
	}
	return &Generation{Content: msg.Content, Reasoning: msg.Reasoning}, nil
}

func (gc *GroqClient) sendRequestAndParse(ctx context.Context, payload requestPayload) (*ResponseLLM, error) {
	var err error
	var response []byte
	var status int
	var generatedResponse ResponseLLM

	for i := 0; i <= gc.maxRetries; i++ {
		select {
		case <-ctx.Done():
			log.Println("🚨 Completion request canceled before execution")
			return nil, ctx.Err()
		default:
			if i > 0 {
				time.Sleep(time.Duration(math.Pow(2, float64(i))) * 100 * time.Millisecond)
			}
			response, status, err = gc.restClient.Post(ctx, completionsEndpoint, payload, nil)
			if err != nil {
				log.Printf("⚠️ Completion attempt %d failed: HTTP %d | Error: %v", i+1, status, err)
				continue
			}
			if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
				err = fmt.Errorf("completion endpoint returned status %d: %s", status, string(response))
				log.Printf("⚠️ Completion attempt %d failed: %v", i+1, err)
				continue
			}
			if status != http.StatusOK {
				return nil, fmt.Errorf("completion endpoint returned status %d: %s", status, string(response))
			}
			if err = json.Unmarshal(response, &generatedResponse); err != nil {
				log.Printf("⚠️ Error parsing completion response: %v", err)
				continue
			}
			return &generatedResponse, nil
		}
	}

	return nil, fmt.Errorf("completion request failed after %d retries: %w", gc.maxRetries, err)
}
