// Package world implements the flat world snapshot sent to clients:
// bit-packed chunk sections, heightmaps and chunk columns.
package world

import (
	"fmt"

	"go.minekube.com/kasumi/pkg/proto"
)

// MaxBitsPerEntry is the widest entry a packed array supports.
const MaxBitsPerEntry = 32

func checkBits(bits int) error {
	if bits < 1 || bits > MaxBitsPerEntry {
		return fmt.Errorf("%w: bits per entry %d out of range [1,%d]", proto.ErrMalformedBuffer, bits, MaxBitsPerEntry)
	}
	return nil
}

func mustBits(bits int) {
	if err := checkBits(bits); err != nil {
		panic(err)
	}
}

// SpanningWords returns the number of words n entries of the given width
// occupy when entries may span word boundaries.
func SpanningWords(n, bits int) int {
	return (n*bits + 63) / 64
}

// PaddedWords returns the number of words n entries of the given width
// occupy when every entry is kept within a single word.
func PaddedWords(n, bits int) int {
	perWord := 64 / bits
	return (n + perWord - 1) / perWord
}

// PackSpanning packs entries back-to-back into 64-bit words, least significant
// bit first. An entry may straddle two words. Values wider than bits are masked.
// It panics if bits is not in [1,32].
func PackSpanning(entries []uint32, bits int) []uint64 {
	mustBits(bits)
	words := make([]uint64, SpanningWords(len(entries), bits))
	mask := uint64(1)<<bits - 1
	offset := 0
	for _, e := range entries {
		v := uint64(e) & mask
		i, shift := offset/64, offset%64
		words[i] |= v << shift
		if overflow := shift + bits - 64; overflow > 0 {
			words[i+1] = v >> (bits - overflow)
		}
		offset += bits
	}
	return words
}

// UnpackSpanning is the inverse of PackSpanning and reads n entries from words.
func UnpackSpanning(words []uint64, bits, n int) ([]uint32, error) {
	if err := checkBits(bits); err != nil {
		return nil, err
	}
	if need := SpanningWords(n, bits); len(words) < need {
		return nil, fmt.Errorf("%w: %d entries of %d bits need %d words, got %d",
			proto.ErrMalformedBuffer, n, bits, need, len(words))
	}
	mask := uint64(1)<<bits - 1
	entries := make([]uint32, n)
	offset := 0
	for j := range entries {
		i, shift := offset/64, offset%64
		v := words[i] >> shift
		if shift+bits > 64 {
			v |= words[i+1] << (64 - shift)
		}
		entries[j] = uint32(v & mask)
		offset += bits
	}
	return entries, nil
}

// PackPadded packs entries into 64-bit words, least significant bit first,
// starting a new word whenever the next entry would not fully fit.
// Unused high bits of every word are zero. Values wider than bits are masked.
// It panics if bits is not in [1,32].
func PackPadded(entries []uint32, bits int) []uint64 {
	mustBits(bits)
	perWord := 64 / bits
	words := make([]uint64, PaddedWords(len(entries), bits))
	mask := uint64(1)<<bits - 1
	for j, e := range entries {
		words[j/perWord] |= (uint64(e) & mask) << ((j % perWord) * bits)
	}
	return words
}

// UnpackPadded is the inverse of PackPadded and reads n entries from words.
func UnpackPadded(words []uint64, bits, n int) ([]uint32, error) {
	if err := checkBits(bits); err != nil {
		return nil, err
	}
	if need := PaddedWords(n, bits); len(words) < need {
		return nil, fmt.Errorf("%w: %d entries of %d bits need %d words, got %d",
			proto.ErrMalformedBuffer, n, bits, need, len(words))
	}
	perWord := 64 / bits
	mask := uint64(1)<<bits - 1
	entries := make([]uint32, n)
	for j := range entries {
		entries[j] = uint32(words[j/perWord] >> ((j % perWord) * bits) & mask)
	}
	return entries, nil
}
