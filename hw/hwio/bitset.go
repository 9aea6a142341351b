package hwio

import (
	"fmt"
	"math/bits"
)

const (
	NumBits  = 0x10000 // one bit per address of the 16-bit bus
	wordSize = 64
	numWords = NumBits / wordSize
)

// Bitset is a set of bus addresses. The zero value is an empty set.
type Bitset struct {
	words [numWords]uint64
}

func (b *Bitset) Set(addr uint16) {
	b.words[addr/wordSize] |= 1 << (addr % wordSize)
}

func (b *Bitset) Clear(addr uint16) {
	b.words[addr/wordSize] &^= 1 << (addr % wordSize)
}

func (b *Bitset) Test(addr uint16) bool {
	return b.words[addr/wordSize]&(1<<(addr%wordSize)) != 0
}

// SetRange adds all addresses in [start, end).
func (b *Bitset) SetRange(start, end uint) {
	b.applyRange(start, end, func(w *uint64, mask uint64) { *w |= mask })
}

// ClearRange removes all addresses in [start, end).
func (b *Bitset) ClearRange(start, end uint) {
	b.applyRange(start, end, func(w *uint64, mask uint64) { *w &^= mask })
}

func (b *Bitset) applyRange(start, end uint, op func(*uint64, uint64)) {
	if start >= end || end > NumBits {
		panic(fmt.Sprintf("invalid range [%d, %d)", start, end))
	}
	for start < end {
		w, bit := start/wordSize, start%wordSize
		n := min(wordSize-bit, end-start)
		mask := ^uint64(0)
		if n < wordSize {
			mask = (uint64(1)<<n - 1) << bit
		}
		op(&b.words[w], mask)
		start += n
	}
}

// Len returns the number of addresses in the set.
func (b *Bitset) Len() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Next returns the first address in the set greater or equal to addr.
func (b *Bitset) Next(addr uint) (uint16, bool) {
	for addr < NumBits {
		w := b.words[addr/wordSize] >> (addr % wordSize)
		if w != 0 {
			return uint16(addr + uint(bits.TrailingZeros64(w))), true
		}
		addr = (addr/wordSize + 1) * wordSize
	}
	return 0, false
}

func (b *Bitset) Reset() {
	clear(b.words[:])
}
