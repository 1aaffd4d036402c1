// Package engine contains the game loop orchestrator and the phase
// subsystems it dispatches to: event resolution, sales, settlement and the
// nightly cleanup.
//
// ARCHITECTURAL RULE: subsystems never mutate a Player in place. Each phase
// handler returns a new Player value and the loop persists it through the
// repository.
package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Rand is the injectable randomness source shared by the phase subsystems.
// Tests substitute a deterministic stub; production uses NewRand.
type Rand interface {
	// Float64 returns a uniform sample in [0, 1).
	Float64() float64
	// IntN returns a uniform sample in [0, n).
	IntN(n int) int
}

type pcgRand struct {
	r *rand.Rand
}

func (p *pcgRand) Float64() float64 { return p.r.Float64() }
func (p *pcgRand) IntN(n int) int   { return p.r.IntN(n) }

// NewRand creates the production randomness source. A zero seed draws the
// seed from crypto/rand (the default unseeded behavior); any other seed
// makes the source fully deterministic for replay.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = cryptoSeed()
	}
	return &pcgRand{r: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

func cryptoSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand failing is unrecoverable in practice; fall back to a
		// fixed seed rather than panicking the whole server.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
