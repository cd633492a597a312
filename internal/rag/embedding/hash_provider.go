package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"unicode"
)

// HashProvider is an offline Provider. Each lowercase word is hashed into one signed
// bucket and the result is L2-normalised, so texts that share words score higher under
// cosine similarity. It needs no network and is fully deterministic.
type HashProvider struct {
	Dimension int
}

func NewHashProvider(dimension int) *HashProvider {
	if dimension <= 0 {
		dimension = 1536
	}
	return &HashProvider{Dimension: dimension}
}

func (p *HashProvider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, s := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.vector(s)
	}
	return out, nil
}

func (p *HashProvider) vector(s string) []float32 {
	vec := make([]float32, p.Dimension)
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		// Blank text still needs a non-zero vector for cosine similarity.
		words = []string{s}
	}
	for _, w := range words {
		h := sha256.Sum256([]byte(w))
		idx := binary.LittleEndian.Uint32(h[0:4]) % uint32(p.Dimension)
		sign := float32(1)
		if h[4]&1 == 1 {
			sign = -1
		}
		vec[idx] += sign
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}
