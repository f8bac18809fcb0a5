package catalog

// seededRand is a deterministic generator keyed by a string seed. The seed is
// folded through a 32-bit mixing hash and each draw runs the state through
// two multiply-xorshift rounds. Board order is derivable from the game id, so
// the exact sequence is an externally observable contract; do not change the
// constants.
type seededRand struct {
	h uint32
}

func newSeededRand(seed string) *seededRand {
	h := uint32(1779033703) ^ uint32(len(seed))
	for i := 0; i < len(seed); i++ {
		h = (h ^ uint32(seed[i])) * 3432918353
		h = h<<13 | h>>19
	}
	return &seededRand{h: h}
}

// Float64 returns the next value in [0, 1).
func (r *seededRand) Float64() float64 {
	r.h = (r.h ^ r.h>>16) * 2246822507
	r.h = (r.h ^ r.h>>13) * 3266489909
	r.h ^= r.h >> 16
	return float64(r.h) / 4294967296
}

// shuffle permutes s in place with a Fisher-Yates walk driven by r.
func shuffle[T any](r *seededRand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := int(r.Float64() * float64(i+1))
		s[i], s[j] = s[j], s[i]
	}
}
