package rag

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"NinesolChat/app/models"
	"NinesolChat/app/utils"
)

var _ Retriever = &Client{}

// Client retrieves knowledge-base documents for a query. It embeds the query,
// over-fetches candidates by raw similarity and then keeps the k most relevant
// yet mutually diverse ones (maximal marginal relevance), so the prompt is not
// padded with near-duplicate chunks. The query path is read-only.
type Client struct {
	vectors  vectorStore
	embedder models.Embedder
	lambda   float64
}

func NewClient(embedder models.Embedder, opts QdrantOptions) (*Client, error) {
	vectors, err := NewQdrantStore(opts)
	if err != nil {
		return nil, err
	}
	return &Client{
		embedder: embedder,
		vectors:  vectors,
		lambda:   DefaultLambda,
	}, nil
}

func (c *Client) Search(ctx context.Context, text string, k, fetchK int) ([]Document, error) {
	if fetchK < k {
		fetchK = k
	}

	vec, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	candidates, err := c.vectors.Query(ctx, vec, fetchK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(candidates))
	for i, d := range candidates {
		vectors[i] = d.Vector
	}

	out := make([]Document, 0, k)
	for _, idx := range maximalMarginalRelevance(vec, vectors, c.lambda, k) {
		doc := candidates[idx]
		doc.Vector = nil
		out = append(out, doc)
	}
	return out, nil
}

func (c *Client) Close() error {
	return c.vectors.Close()
}

// IngestOptions controls a knowledge-base ingest run.
type IngestOptions struct {
	Folder    string
	ChunkSize int
	Overlap   int
}

var knowledgeExts = map[string]bool{".txt": true, ".md": true, ".html": true, ".htm": true}

// IngestKnowledgeBase bootstraps the collection if it does not exist and fills
// it from the knowledge folder: plain-text and markdown files are taken as-is,
// HTML files are stripped to text first; everything is chunked, embedded and
// upserted in per-file batches. A run against an existing collection is a no-op.
func (c *Client) IngestKnowledgeBase(ctx context.Context, opts IngestOptions) error {
	// The collection dimension is whatever the configured embedding model
	// produces; probe it instead of hard-coding.
	probe, err := c.embedder.EmbedText(ctx, "dimension probe")
	if err != nil {
		return err
	}

	alreadyExists, err := c.vectors.InitContext(ctx, len(probe))
	if err != nil {
		return err
	}
	if alreadyExists {
		log.Println("ℹ️ Collection already exists, skipping knowledge-base ingest")
		return nil
	}

	if tree, treeErr := utils.BuildTree(opts.Folder, nil, nil); treeErr == nil {
		log.Printf("📚 Ingesting knowledge base:\n%s", tree)
	}

	paths, err := utils.LoadFilesFromDir(opts.Folder, knowledgeExts)
	if err != nil {
		return err
	}

	for _, p := range paths {
		text, err := utils.ReadFile(p)
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext == ".html" || ext == ".htm" {
			if text, err = utils.ExtractTextFromHTML(text); err != nil {
				return err
			}
		}

		chunks := ChunkText(text, opts.ChunkSize, opts.Overlap)
		batch := make([]Document, 0, len(chunks))

		for i, ch := range chunks {
			var vec []float32
			if vec, err = c.embedder.EmbedText(ctx, ch); err != nil {
				return err
			}
			batch = append(batch, Document{
				ID:      uuid.New().String(),
				Content: ch,
				Metadata: map[string]any{
					"source": filepath.Base(p),
					"chunk":  i,
				},
				Vector: vec,
			})
		}

		if err = c.vectors.UpsertBatch(ctx, batch); err != nil {
			return err
		}
		log.Printf("✅ Ingested %s (%d chunks)", filepath.Base(p), len(chunks))
	}

	return nil
}

// ChunkText splits text into rune windows of size with the given overlap.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap >= size {
		overlap = size - 1
	}

	runes := []rune(text)
	var chunks []string

	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}
