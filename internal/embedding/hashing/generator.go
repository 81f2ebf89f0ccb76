// Package hashing embeds text locally by feature hashing word tokens.
package hashing

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const defaultDimension = 256

// Config holds configuration for the hashing embedding generator.
type Config struct {
	Dimension int `env:"EMBEDDING_DIMENSION" envDefault:"256"`
}

// Generator maps tokens onto a fixed number of signed buckets.
// It needs no network access and is deterministic across processes.
type Generator struct {
	dimension int
}

// NewGenerator creates a hashing embedding generator.
func NewGenerator(config Config) *Generator {
	if config.Dimension <= 0 {
		config.Dimension = defaultDimension
	}
	return &Generator{dimension: config.Dimension}
}

// Generate creates an L2-normalized vector embedding from text.
func (g *Generator) Generate(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}

	vector := make([]float64, g.dimension)
	for _, token := range tokenize(text) {
		sum := xxhash.Sum64String(token)
		bucket := sum % uint64(g.dimension)
		if sum>>63 == 1 {
			vector[bucket]--
		} else {
			vector[bucket]++
		}
	}

	normalize(vector)
	return vector, nil
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "hashing"
}

// Dimension returns the vector dimension.
func (g *Generator) Dimension() int {
	return g.dimension
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vector []float64) {
	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	if norm == 0 {
		return
	}

	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] /= norm
	}
}
