package rag

import "math"

// DefaultLambda balances query relevance against diversity in marginal
// relevance selection. 0.5 weighs both equally.
const DefaultLambda = 0.5

// maximalMarginalRelevance greedily picks up to k candidate indices, each step
// maximizing lambda*sim(query, candidate) - (1-lambda)*max sim(candidate,
// already selected). Returned indices are in selection order.
func maximalMarginalRelevance(query []float32, candidates [][]float32, lambda float64, k int) []int {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	querySims := make([]float64, len(candidates))
	for i, c := range candidates {
		querySims[i] = cosineSimilarity(query, c)
	}

	selected := make([]int, 0, k)
	picked := make([]bool, len(candidates))

	for len(selected) < k {
		best := -1
		bestScore := math.Inf(-1)

		for i := range candidates {
			if picked[i] {
				continue
			}
			redundancy := 0.0
			for _, s := range selected {
				if sim := cosineSimilarity(candidates[i], candidates[s]); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*querySims[i] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				best = i
			}
		}

		selected = append(selected, best)
		picked[best] = true
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
