package world

// Flat returns a chunk whose columns are stacked from MinY upwards
// with the given block state layers.
func Flat(layers []uint32, biome uint32) *Chunk {
	c := NewChunk(biome)
	for i, state := range layers {
		y := MinY + i
		for z := 0; z < SectionWidth; z++ {
			for x := 0; x < SectionWidth; x++ {
				c.SetBlock(x, y, z, state)
			}
		}
	}
	c.ComputeHeightmaps()
	return c
}
