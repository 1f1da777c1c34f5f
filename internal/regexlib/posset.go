package regexlib

import "math/bits"

// posSet is a fixed-size bit set of state or position indices.
type posSet []uint64

func newPosSet(n int) posSet { return make(posSet, (n+63)/64) }

func (s posSet) add(i int)      { s[i/64] |= 1 << (uint(i) % 64) }
func (s posSet) has(i int) bool { return i/64 < len(s) && s[i/64]&(1<<(uint(i)%64)) != 0 }

func (s posSet) empty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

func (s posSet) union(o posSet) {
	for i := range o {
		s[i] |= o[i]
	}
}

func (s posSet) clone() posSet { return append(posSet(nil), s...) }

func (s posSet) members() []int {
	var out []int
	for wi, w := range s {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &^= 1 << uint(b)
		}
	}
	return out
}

// key is a map key identifying the set's contents.
func (s posSet) key() string {
	buf := make([]byte, 0, len(s)*8)
	for _, w := range s {
		for k := 0; k < 8; k++ {
			buf = append(buf, byte(w>>(8*k)))
		}
	}
	return string(buf)
}
