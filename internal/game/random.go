package game

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// RandomSource supplies every random roll a match makes: rarity, cost, stat
// spreads, ability and name picks, shuffles. Tests substitute a scripted
// source to pin outcomes.
type RandomSource interface {
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
	// IntN returns a uniform int in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// IntRange returns a uniform int in [lo, hi], both ends inclusive.
func IntRange(r RandomSource, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](r RandomSource, items []T) T {
	return items[r.IntN(len(items))]
}

// SeededSource is a ChaCha8 generator keyed by the BLAKE2b-256 digest of a
// seed string. The same seed always yields the same stream, so a seed
// reproduces a whole match including card ids.
type SeededSource struct {
	seed   string
	stream *rand.ChaCha8
	rng    *rand.Rand
}

// NewSeededSource creates a source from an arbitrary seed string.
func NewSeededSource(seed string) *SeededSource {
	stream := rand.NewChaCha8(blake2b.Sum256([]byte(seed)))
	return &SeededSource{
		seed:   seed,
		stream: stream,
		rng:    rand.New(stream),
	}
}

// NewRandomSeed returns a fresh seed for matches that do not supply one.
func NewRandomSeed() string {
	return uuid.NewString()
}

// Seed returns the seed the source was created from.
func (s *SeededSource) Seed() string {
	return s.seed
}

// Float64 implements RandomSource.
func (s *SeededSource) Float64() float64 {
	return s.rng.Float64()
}

// IntN implements RandomSource.
func (s *SeededSource) IntN(n int) int {
	return s.rng.IntN(n)
}

// Read fills p from the same stream, which lets uuid draw card ids from it.
func (s *SeededSource) Read(p []byte) (int, error) {
	return s.stream.Read(p)
}

// newCardID draws a v4 UUID from r when it can act as a byte stream and
// falls back to the process-wide generator otherwise.
func newCardID(r RandomSource) string {
	if reader, ok := r.(interface{ Read([]byte) (int, error) }); ok {
		if id, err := uuid.NewRandomFromReader(reader); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}

// roundHalfUp rounds to the nearest integer with halves going up, including
// for negative values (-2.5 becomes -2).
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}
