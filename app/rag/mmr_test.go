package rag

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero_vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"dim_mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, cse := range cases {
		t.Run(cse.name, func(t *testing.T) {
			if got := cosineSimilarity(cse.a, cse.b); math.Abs(got-cse.want) > 1e-9 {
				t.Fatalf("got %f, want %f", got, cse.want)
			}
		})
	}
}

func TestMMRPrefersDiversity(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0.99, 0.01}, // closest to the query
		{0.98, 0.02}, // near-duplicate of the first
		{0.6, 0.8},   // further away but diverse
	}

	got := maximalMarginalRelevance(query, candidates, DefaultLambda, 2)
	if len(got) != 2 {
		t.Fatalf("unexpected selection: %v", got)
	}
	if got[0] != 0 {
		t.Fatalf("first pick must be the most similar candidate, got %d", got[0])
	}
	if got[1] != 2 {
		t.Fatalf("second pick should be the diverse candidate, got %d", got[1])
	}
}

func TestMMRBounds(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{1, 0}, {0, 1}}

	if got := maximalMarginalRelevance(query, candidates, DefaultLambda, 5); len(got) != 2 {
		t.Fatalf("k beyond candidate count must return all candidates, got %v", got)
	}
	if got := maximalMarginalRelevance(query, candidates, DefaultLambda, 0); got != nil {
		t.Fatalf("k=0 must select nothing, got %v", got)
	}
	if got := maximalMarginalRelevance(query, nil, DefaultLambda, 3); got != nil {
		t.Fatalf("no candidates must select nothing, got %v", got)
	}
}

func TestMMRPureRelevanceWithLambdaOne(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0.5, 0.5},
		{0.99, 0.01},
		{0.98, 0.02},
	}

	got := maximalMarginalRelevance(query, candidates, 1.0, 2)
	if got[0] != 1 || got[1] != 2 {
		t.Fatalf("lambda=1 must rank by raw similarity, got %v", got)
	}
}
