package ranking

import (
	"math"
	"regexp"
	"strings"
)

// termPattern matches runs of two or more word characters.
var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Similarity returns the TF-IDF cosine similarity of two documents scaled to
// [0, 100]. The two documents form the whole corpus. Terms are lowercased word
// runs of at least two characters, weighted by raw count times the smoothed
// inverse document frequency ln((1+n)/(1+df))+1, and vectors are L2 normalized.
// Documents without terms, or without shared terms, score 0.
func Similarity(docA, docB string) float64 {
	tfA := termCounts(docA)
	tfB := termCounts(docB)
	if len(tfA) == 0 || len(tfB) == 0 {
		return 0
	}

	const n = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if tfA[term] > 0 {
			df++
		}
		if tfB[term] > 0 {
			df++
		}
		return math.Log((1+n)/(1+df)) + 1
	}

	var dot, normA, normB float64
	for term, count := range tfA {
		w := float64(count) * idf(term)
		normA += w * w
		if other, ok := tfB[term]; ok {
			dot += w * float64(other) * idf(term)
		}
	}
	for term, count := range tfB {
		w := float64(count) * idf(term)
		normB += w * w
	}
	if dot == 0 || normA == 0 || normB == 0 {
		return 0
	}

	score := 100 * dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return clamp(score, 0, 100)
}

func termCounts(doc string) map[string]int {
	counts := make(map[string]int)
	for _, term := range termPattern.FindAllString(strings.ToLower(doc), -1) {
		counts[term]++
	}
	return counts
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
