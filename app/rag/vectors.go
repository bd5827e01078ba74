package rag

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const defaultGRPCPort = 6334

type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

type QdrantOptions struct {
	URL        string
	APIKey     string
	Collection string
}

// NewQdrantStore connects to a Qdrant deployment over gRPC. URL carries the
// scheme (TLS for https) and an optional port; without one the default gRPC
// port is used.
func NewQdrantStore(opts QdrantOptions) (*QdrantStore, error) {
	u, err := url.Parse(opts.URL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid qdrant url %q: %w", opts.URL, err)
	}

	port := defaultGRPCPort
	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("invalid qdrant port %q: %w", p, err)
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: opts.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, &VectorStoreError{Err: err}
	}
	return &QdrantStore{
		client:     client,
		collection: opts.Collection,
	}, nil
}

func (s *QdrantStore) InitContext(ctx context.Context, vectorSize int) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, &VectorStoreError{Err: err}
	}
	if !exists {
		if err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(vectorSize),
						Distance: qdrant.Distance_Cosine,
					},
				},
			},
		}); err != nil {
			return exists, &VectorStoreError{Err: fmt.Errorf("create collection: %w", err)}
		}
	}
	return exists, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func (s *QdrantStore) UpsertBatch(ctx context.Context, docs []Document) error {
	pts := make([]*qdrant.PointStruct, len(docs))

	for i, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.New().String()
		}

		payload := map[string]any{
			"text": d.Content,
		}
		for k, v := range d.Metadata {
			payload[k] = v
		}

		pts[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(d.Vector...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         pts,
	})
	if err != nil {
		return &VectorStoreError{Err: err}
	}
	return nil
}

// Query returns up to limit nearest points by similarity, with their stored
// vectors so the caller can run marginal-relevance selection over them.
func (s *QdrantStore) Query(ctx context.Context, vector []float32, limit int) ([]Document, error) {
	lim := uint64(limit)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Limit:          &lim,
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, &VectorStoreError{Err: err}
	}

	var out []Document

	for _, r := range resp {
		md := make(map[string]any)
		for key, v := range r.Payload {
			md[key] = convertQdrantValue(v)
		}

		content := ""
		if val, ok := md["text"]; ok {
			content = fmt.Sprintf("%v", val)
		}

		var id string
		if r.Id != nil {
			switch x := r.Id.PointIdOptions.(type) {
			case *qdrant.PointId_Uuid:
				id = x.Uuid
			case *qdrant.PointId_Num:
				id = fmt.Sprintf("%d", x.Num)
			}
		}

		var vec []float32
		if r.Vectors != nil {
			if v := r.Vectors.GetVector(); v != nil {
				vec = v.GetData()
			}
		}

		out = append(out, Document{
			ID:       id,
			Content:  content,
			Metadata: md,
			Vector:   vec,
		})
	}

	return out, nil
}

func convertQdrantValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_ListValue:
		out := make([]any, len(val.ListValue.Values))
		for i, lv := range val.ListValue.Values {
			out[i] = convertQdrantValue(lv)
		}
		return out
	case *qdrant.Value_StructValue:
		out := make(map[string]any)
		for k, nv := range val.StructValue.Fields {
			out[k] = convertQdrantValue(nv)
		}
		return out
	}
	return nil
}
