package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"NinesolChat/app/utils/restclient"
)

var _ Embedder = &HFEndpointClient{}

// HFEndpointClient calls a hosted feature-extraction pipeline to embed text.
// Vectors for previously seen inputs are served from a per-process cache.
// Failures are not retried locally; the hosted endpoint does its own retrying.
type HFEndpointClient struct {
	restClient restclient.Interface
	endpoint   string
	cache      sync.Map
}

type HFOptions struct {
	BaseURL  string
	RepoID   string
	APIToken string
}

func NewHFEndpointClient(opts HFOptions) *HFEndpointClient {
	headers := map[string]string{"Authorization": "Bearer " + opts.APIToken}
	return &HFEndpointClient{
		restClient: restclient.NewRestClient(opts.BaseURL, headers),
		endpoint:   fmt.Sprintf("/models/%s/pipeline/feature-extraction", opts.RepoID),
	}
}

func (ec *HFEndpointClient) EmbedText(ctx context.Context, input string) ([]float32, error) {
	if v, ok := ec.cache.Load(input); ok {
		if emb, ok2 := v.([]float32); ok2 {
			return emb, nil
		}
	}

	payload := embeddingRequestPayload{
		Inputs:  []string{input},
		Options: embeddingOptions{WaitForModel: true},
	}

	body, status, err := ec.restClient.Post(ctx, ec.endpoint, payload, nil)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	if status != http.StatusOK {
		return nil, &EmbeddingError{Err: fmt.Errorf("embedding endpoint returned status %d: %s", status, string(body))}
	}

	var vectors [][]float32
	if err = json.Unmarshal(body, &vectors); err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("parse embedding response: %w", err)}
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, &EmbeddingError{Err: errors.New("no embedding data returned")}
	}

	emb := vectors[0]
	ec.cache.Store(input, emb)
	return emb, nil
}
