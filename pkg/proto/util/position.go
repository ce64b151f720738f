package util

import "fmt"

// Position is a block position packed into a long as x (26 bits), z (26 bits), y (12 bits).
type Position struct {
	X, Y, Z int
}

func (p Position) Long() int64 {
	return (int64(p.X)&0x3FFFFFF)<<38 | (int64(p.Z)&0x3FFFFFF)<<12 | int64(p.Y)&0xFFF
}

func PositionFromLong(v int64) Position {
	return Position{
		X: int(v >> 38),
		Y: int(v << 52 >> 52),
		Z: int(v << 26 >> 38),
	}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}
