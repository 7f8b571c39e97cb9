// Package rng provides the seeded generator every random decision in a
// battle is drawn from.
package rng

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidSeed is returned for negative seeds.
var ErrInvalidSeed = errors.New("PRNG seed must be non-negative")

// warmup draws are made at construction and never counted.
const warmup = 4

// PRNG is a xorshift64* generator seeded through splitmix64.
// It is not safe for concurrent use; each battle owns its own stream.
type PRNG struct {
	seed  int64
	state uint64
	draws int
}

// Snapshot is the serializable state of a PRNG.
type Snapshot struct {
	Seed  int64  `yaml:"seed" json:"seed"`
	State uint64 `yaml:"state" json:"state"`
	Draws int    `yaml:"draws" json:"draws"`
}

// New creates a generator. Seed 0 behaves as seed 1.
func New(seed int64) (*PRNG, error) {
	if seed < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSeed, seed)
	}
	if seed == 0 {
		seed = 1
	}
	p := &PRNG{seed: seed, state: splitmix64(uint64(seed))}
	if p.state == 0 {
		p.state = 0x9E3779B97F4A7C15
	}
	for i := 0; i < warmup; i++ {
		p.advance()
	}
	return p, nil
}

// MustNew is New for seeds known to be valid. It panics on a negative seed.
func MustNew(seed int64) *PRNG {
	p, err := New(seed)
	if err != nil {
		panic(err)
	}
	return p
}

// FromSnapshot restores a generator that continues exactly where the
// snapshotted one left off.
func FromSnapshot(s Snapshot) (*PRNG, error) {
	if s.Seed <= 0 {
		return nil, fmt.Errorf("%w: snapshot seed %d", ErrInvalidSeed, s.Seed)
	}
	if s.State == 0 {
		return nil, errors.New("rng: snapshot has zero state")
	}
	if s.Draws < 0 {
		return nil, fmt.Errorf("rng: snapshot has negative draw count %d", s.Draws)
	}
	return &PRNG{seed: s.Seed, state: s.State, draws: s.Draws}, nil
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func (p *PRNG) advance() uint64 {
	x := p.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	p.state = x
	return x * 0x2545F4914F6CDD1D
}

// Uint64 returns the next raw 64-bit value.
func (p *PRNG) Uint64() uint64 {
	p.draws++
	return p.advance()
}

// Next returns a float in [0, 1).
func (p *PRNG) Next() float64 {
	return float64(p.Uint64()>>11) / (1 << 53)
}

// Int63 returns a non-negative int64.
func (p *PRNG) Int63() int64 {
	return int64(p.Uint64() >> 1)
}

// Intn returns an int in [0, n). It panics if n <= 0.
func (p *PRNG) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with non-positive n")
	}
	return int(p.Next() * float64(n))
}

// Chance reports whether a draw falls under probability prob.
func (p *PRNG) Chance(prob float64) bool {
	return p.Next() < prob
}

// Seed returns the normalized seed the generator was created with.
func (p *PRNG) Seed() int64 { return p.seed }

// DrawCount returns the number of draws since creation, excluding warm-up.
func (p *PRNG) DrawCount() int { return p.draws }

// Clone returns an independent generator with identical future output.
func (p *PRNG) Clone() *PRNG {
	c := *p
	return &c
}

// Snapshot captures the generator state.
func (p *PRNG) Snapshot() Snapshot {
	return Snapshot{Seed: p.seed, State: p.state, Draws: p.draws}
}

// Stream returns a fresh generator seeded from DeriveSeed(p.Seed(), label).
// It does not draw from p.
func (p *PRNG) Stream(label string) *PRNG {
	return MustNew(DeriveSeed(p.seed, label))
}

// DeriveSeed returns a reproducible child seed for label. The result is
// always positive.
func DeriveSeed(base int64, label string) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(base))
	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(label)
	s := int64(d.Sum64() & (1<<63 - 1))
	if s == 0 {
		return 1
	}
	return s
}
