package embedder

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

// DeterministicEmbedder avoids network calls by hashing tokens into a fixed
// size vector, a bag-of-words projection. Texts sharing vocabulary land close
// together under cosine similarity, which is enough for offline testing of
// the retrieval and gating pipeline.
type DeterministicEmbedder struct {
	dim int
}

var _ rag.Embedder = (*DeterministicEmbedder)(nil)

// NewDeterministicEmbedder constructs the embedder.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 64
	}
	return &DeterministicEmbedder{dim: dim}
}

// Embed converts each text into a hashed token-count vector.
func (e *DeterministicEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector := make([]float32, e.dim)
		for _, token := range tokenize(text) {
			hash := fnv.New64a()
			_, _ = hash.Write([]byte(token))
			seed := hash.Sum64()
			bucket := int(seed % uint64(e.dim))
			sign := float32(1)
			if (seed>>32)&1 == 1 {
				sign = -1
			}
			vector[bucket] += sign
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
