// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

// prng is a two-word xorshift64+ generator: two 32-bit xorshift sequences
// added together, shift triplet [17,7,16] per Marsaglia's paper. Grounded
// on the Go runtime's own fastrand/fastrandn (runtime/stubs.go). It is a
// keyed deterministic generator: the same seed always produces the same
// sequence.
type prng struct {
	s0, s1 uint32
}

// newPRNG seeds a generator from a 64-bit key. A seed of zero is remapped
// so the sequence never degenerates to all zeros.
func newPRNG(seed uint64) *prng {
	p := &prng{s0: uint32(seed), s1: uint32(seed >> 32)}
	if p.s0 == 0 && p.s1 == 0 {
		p.s1 = 1
	}
	return p
}

// next draws the next 32-bit word.
func (p *prng) next() uint32 {
	s1, s0 := p.s0, p.s1
	s1 ^= s1 << 17
	s1 = s1 ^ s0 ^ s1>>7 ^ s0>>16
	p.s0, p.s1 = s0, s1
	return s0 + s1
}

// intn returns a uniform value in [0, n). Uses Lemire's multiply-shift
// reduction (fastrandn) rather than modulo, avoiding a division per draw.
func (p *prng) intn(n uint32) uint32 {
	if n == 0 {
		panic("procrt: intn(0)")
	}
	return uint32(uint64(p.next()) * uint64(n) >> 32)
}

// schedule picks a runnable proc uniformly at random. ok is false when the
// runnable pool is empty.
func (rt *Runtime) schedule() (*Proc, bool) {
	n := rt.runnable.Len()
	if n == 0 {
		return nil, false
	}
	i := rt.rng.intn(uint32(n))
	return rt.runnable.At(int(i)), true
}
