package world

import (
	"bytes"
	"fmt"
	"io"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
)

const (
	// SectionCount is the number of sections of a chunk column.
	SectionCount = 24
	// MinY is the lowest block y coordinate.
	MinY = -64
	// Height is the height of a chunk column in blocks.
	Height = SectionCount * SectionWidth

	maxDataSize = 2 << 20
)

var (
	readHeightmaps  = util.PrefixedArrayReader(readHeightmap)
	writeHeightmaps = util.PrefixedArrayWriter(writeHeightmap)
)

// Chunk is a 16 block wide column of sections from MinY to MinY+Height.
type Chunk struct {
	Sections   [SectionCount]*Section
	Heightmaps []Heightmap
}

// NewChunk returns an all-air chunk filled with biome.
func NewChunk(biome uint32) *Chunk {
	c := new(Chunk)
	for i := range c.Sections {
		c.Sections[i] = NewSection(biome)
	}
	return c
}

func inChunk(x, y, z int) bool {
	return x >= 0 && x < SectionWidth && z >= 0 && z < SectionWidth && y >= MinY && y < MinY+Height
}

// Block returns the block state at chunk-relative x, z and world y.
// Coordinates outside the chunk are air.
func (c *Chunk) Block(x, y, z int) uint32 {
	if !inChunk(x, y, z) {
		return Air
	}
	sy := y - MinY
	return c.Sections[sy/SectionWidth].Block(x, sy%SectionWidth, z)
}

// SetBlock sets the block state at chunk-relative x, z and world y.
// Coordinates outside the chunk are ignored.
func (c *Chunk) SetBlock(x, y, z int, state uint32) {
	if !inChunk(x, y, z) {
		return
	}
	sy := y - MinY
	c.Sections[sy/SectionWidth].SetBlock(x, sy%SectionWidth, z, state)
}

// ComputeHeightmaps derives the WORLD_SURFACE and MOTION_BLOCKING heightmaps,
// treating every non-air block as motion blocking.
func (c *Chunk) ComputeHeightmaps() {
	var h Heightmap
	for z := 0; z < SectionWidth; z++ {
		for x := 0; x < SectionWidth; x++ {
			for y := MinY + Height - 1; y >= MinY; y-- {
				if c.Block(x, y, z) != Air {
					h.Heights[z<<4|x] = uint32(y - MinY + 1)
					break
				}
			}
		}
	}
	surface, motion := h, h
	surface.Kind = WorldSurface
	motion.Kind = MotionBlocking
	c.Heightmaps = []Heightmap{surface, motion}
}

// Encode writes the heightmaps, the size-prefixed section data
// and an empty block entity list.
func (c *Chunk) Encode(wr io.Writer) error {
	if err := writeHeightmaps(wr, c.Heightmaps); err != nil {
		return fmt.Errorf("error writing heightmaps: %w", err)
	}
	data := new(bytes.Buffer)
	for i, s := range c.Sections {
		if s == nil {
			s = NewSection(0)
		}
		if err := s.Encode(data); err != nil {
			return fmt.Errorf("error writing section %d: %w", i, err)
		}
	}
	if err := util.WriteBytes(wr, data.Bytes()); err != nil {
		return err
	}
	return util.WriteVarInt(wr, 0) // block entities
}

// Decode reads a chunk written by Encode.
func (c *Chunk) Decode(rd io.Reader) (err error) {
	if c.Heightmaps, err = readHeightmaps(rd); err != nil {
		return fmt.Errorf("error reading heightmaps: %w", err)
	}
	data, err := util.ReadBytesMax(rd, maxDataSize)
	if err != nil {
		return fmt.Errorf("error reading section data: %w", err)
	}
	sections := bytes.NewReader(data)
	for i := range c.Sections {
		c.Sections[i] = new(Section)
		if err = c.Sections[i].Decode(sections); err != nil {
			return fmt.Errorf("error reading section %d: %w", i, err)
		}
	}
	if sections.Len() != 0 {
		return fmt.Errorf("%w: %d bytes left after sections", proto.ErrMalformedBuffer, sections.Len())
	}
	blockEntities, err := util.ReadVarInt(rd)
	if err != nil {
		return err
	}
	if blockEntities != 0 {
		return fmt.Errorf("%w: block entities are not supported", proto.ErrMalformedBuffer)
	}
	return nil
}
