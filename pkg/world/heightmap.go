package world

import (
	"fmt"
	"io"

	"go.minekube.com/kasumi/pkg/proto/util"
)

const (
	// HeightmapEntries is the number of columns of a chunk.
	HeightmapEntries = SectionWidth * SectionWidth
	// HeightmapBits is the width of a height in a world 384 blocks tall.
	HeightmapBits = 9
)

// HeightmapKind is the type of a heightmap.
type HeightmapKind int32

const (
	WorldSurfaceWG HeightmapKind = iota
	WorldSurface
	OceanFloorWG
	OceanFloor
	MotionBlocking
	MotionBlockingNoLeaves
)

func (k HeightmapKind) Known() bool { return k >= WorldSurfaceWG && k <= MotionBlockingNoLeaves }

func (k HeightmapKind) String() string {
	switch k {
	case WorldSurfaceWG:
		return "WORLD_SURFACE_WG"
	case WorldSurface:
		return "WORLD_SURFACE"
	case OceanFloorWG:
		return "OCEAN_FLOOR_WG"
	case OceanFloor:
		return "OCEAN_FLOOR"
	case MotionBlocking:
		return "MOTION_BLOCKING"
	case MotionBlockingNoLeaves:
		return "MOTION_BLOCKING_NO_LEAVES"
	}
	return fmt.Sprintf("HeightmapKind(%d)", int32(k))
}

// Heightmap holds the height of the highest relevant block of every column,
// indexed by z<<4 | x, relative to the bottom of the world.
type Heightmap struct {
	Kind    HeightmapKind
	Heights [HeightmapEntries]uint32
}

// Encode writes the kind and the heights packed so that no height spans two words.
func (h *Heightmap) Encode(wr io.Writer) error {
	if err := util.WriteEnum(wr, h.Kind); err != nil {
		return err
	}
	words := PackPadded(h.Heights[:], HeightmapBits)
	longs := make([]int64, len(words))
	for i, w := range words {
		longs[i] = int64(w)
	}
	return util.WriteLongArray(wr, longs)
}

// Decode reads a heightmap written by Encode.
func (h *Heightmap) Decode(rd io.Reader) (err error) {
	if h.Kind, err = util.ReadEnum[HeightmapKind](rd); err != nil {
		return err
	}
	longs, err := util.ReadLongArray(rd, HeightmapEntries)
	if err != nil {
		return err
	}
	words := make([]uint64, len(longs))
	for i, l := range longs {
		words[i] = uint64(l)
	}
	heights, err := UnpackPadded(words, HeightmapBits, HeightmapEntries)
	if err != nil {
		return err
	}
	copy(h.Heights[:], heights)
	return nil
}

func writeHeightmap(wr io.Writer, h Heightmap) error { return h.Encode(wr) }

func readHeightmap(rd io.Reader) (h Heightmap, err error) {
	err = h.Decode(rd)
	return
}
