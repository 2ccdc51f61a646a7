// Package names builds card display names by pairing words from two lists.
package names

import "fmt"

// Source is the slice of a random source the generator needs.
type Source interface {
	IntN(n int) int
}

// Generator picks one word from each list and joins them.
type Generator struct {
	first  []string
	second []string
	rnd    Source
}

// NewGenerator creates a generator. Both lists must be non-empty.
func NewGenerator(first, second []string, rnd Source) (*Generator, error) {
	if len(first) == 0 || len(second) == 0 {
		return nil, fmt.Errorf("name lists must not be empty")
	}
	if rnd == nil {
		return nil, fmt.Errorf("random source is required")
	}
	return &Generator{first: first, second: second, rnd: rnd}, nil
}

// Generate returns "<first> <second>". It never fails.
func (g *Generator) Generate() string {
	return g.first[g.rnd.IntN(len(g.first))] + " " + g.second[g.rnd.IntN(len(g.second))]
}

// Combinations returns how many distinct names the generator can produce.
func (g *Generator) Combinations() int {
	return len(g.first) * len(g.second)
}
