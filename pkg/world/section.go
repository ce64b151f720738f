package world

import (
	"fmt"
	"io"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
)

const (
	SectionWidth  = 16
	SectionBlocks = SectionWidth * SectionWidth * SectionWidth
	SectionBiomes = 4 * 4 * 4

	// BlockBits is the width of a directly encoded block state.
	BlockBits = 15
	// BiomeBits is the width of a directly encoded biome.
	BiomeBits = 6

	// Air is the block state of air.
	Air uint32 = 0
)

// Section is a 16x16x16 cube of block states with a 4x4x4 grid of biomes.
type Section struct {
	Blocks [SectionBlocks]uint32
	Biomes [SectionBiomes]uint32
}

// NewSection returns an all-air section filled with biome.
func NewSection(biome uint32) *Section {
	s := new(Section)
	for i := range s.Biomes {
		s.Biomes[i] = biome
	}
	return s
}

func blockIndex(x, y, z int) int { return y<<8 | z<<4 | x }
func biomeIndex(x, y, z int) int { return y<<4 | z<<2 | x }

// Block returns the block state at section-relative coordinates.
func (s *Section) Block(x, y, z int) uint32 { return s.Blocks[blockIndex(x, y, z)] }

// SetBlock sets the block state at section-relative coordinates.
func (s *Section) SetBlock(x, y, z int, state uint32) { s.Blocks[blockIndex(x, y, z)] = state }

// Biome returns the biome of the 4x4x4 cell at cell coordinates.
func (s *Section) Biome(x, y, z int) uint32 { return s.Biomes[biomeIndex(x, y, z)] }

// SetBiome sets the biome of the 4x4x4 cell at cell coordinates.
func (s *Section) SetBiome(x, y, z int, biome uint32) { s.Biomes[biomeIndex(x, y, z)] = biome }

// NonAir returns the number of blocks that are not air.
func (s *Section) NonAir() int {
	var n int
	for _, b := range s.Blocks {
		if b != Air {
			n++
		}
	}
	return n
}

// Encode writes the section using direct palettes.
func (s *Section) Encode(wr io.Writer) error {
	if err := util.WriteUint16(wr, uint16(s.NonAir())); err != nil {
		return err
	}
	if err := writeContainer(wr, s.Blocks[:], BlockBits); err != nil {
		return fmt.Errorf("error writing block states: %w", err)
	}
	if err := writeContainer(wr, s.Biomes[:], BiomeBits); err != nil {
		return fmt.Errorf("error writing biomes: %w", err)
	}
	return nil
}

// Decode reads a section written by Encode.
// The non-air count is recomputed from the block states.
func (s *Section) Decode(rd io.Reader) error {
	if _, err := util.ReadUint16(rd); err != nil {
		return err
	}
	if err := readContainer(rd, s.Blocks[:]); err != nil {
		return fmt.Errorf("error reading block states: %w", err)
	}
	if err := readContainer(rd, s.Biomes[:]); err != nil {
		return fmt.Errorf("error reading biomes: %w", err)
	}
	return nil
}

func writeContainer(wr io.Writer, entries []uint32, bits int) error {
	if err := util.WriteUint8(wr, uint8(bits)); err != nil {
		return err
	}
	for _, w := range PackSpanning(entries, bits) {
		if err := util.WriteUint64(wr, w); err != nil {
			return err
		}
	}
	return nil
}

// readContainer reads a directly encoded container into dst.
func readContainer(rd io.Reader, dst []uint32) error {
	bits, err := util.ReadUint8(rd)
	if err != nil {
		return err
	}
	if bits == 0 {
		return fmt.Errorf("%w: single valued palettes are not supported", proto.ErrMalformedBuffer)
	}
	if err = checkBits(int(bits)); err != nil {
		return err
	}
	words := make([]uint64, SpanningWords(len(dst), int(bits)))
	for i := range words {
		if words[i], err = util.ReadUint64(rd); err != nil {
			return err
		}
	}
	entries, err := UnpackSpanning(words, int(bits), len(dst))
	if err != nil {
		return err
	}
	copy(dst, entries)
	return nil
}
