package graph

// NodeSet is a compact set of node indices using a bitmap.
// Optimized for small dense sets (typical basic-block counts).
type NodeSet struct {
	bits []uint64
}

// NewNodeSet creates a NodeSet that can hold values up to maxVal (inclusive).
func NewNodeSet(maxVal int) *NodeSet {
	words := (maxVal + 64) / 64
	return &NodeSet{bits: make([]uint64, words)}
}

// Set adds val to the set.
func (s *NodeSet) Set(val uint32) {
	word := val / 64
	if int(word) >= len(s.bits) {
		s.grow(int(word) + 1)
	}
	s.bits[word] |= 1 << (val % 64)
}

// Has returns true if val is in the set.
func (s *NodeSet) Has(val uint32) bool {
	word := val / 64
	if int(word) >= len(s.bits) {
		return false
	}
	return s.bits[word]&(1<<(val%64)) != 0
}

// ToSlice returns a sorted slice of all values in the set.
func (s *NodeSet) ToSlice() []uint32 {
	var result []uint32
	for i, word := range s.bits {
		if word == 0 {
			continue
		}
		base := uint32(i * 64)
		for bit := 0; bit < 64; bit++ {
			if word&(1<<bit) != 0 {
				result = append(result, base+uint32(bit))
			}
		}
	}
	return result
}

// Count returns the number of elements in the set.
func (s *NodeSet) Count() int {
	count := 0
	for _, word := range s.bits {
		count += popcount(word)
	}
	return count
}

// grow expands the bitmap to n words.
// Callers guarantee n > len(s.bits).
func (s *NodeSet) grow(n int) {
	newBits := make([]uint64, n)
	copy(newBits, s.bits)
	s.bits = newBits
}

// popcount returns number of 1 bits in x (Hamming weight).
func popcount(x uint64) int {
	// Brian Kernighan's algorithm
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}
