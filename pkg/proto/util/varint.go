package util

import (
	"io"

	"go.minekube.com/kasumi/pkg/proto"
)

// MaxVarIntLen is the maximum number of bytes a VarInt occupies.
const MaxVarIntLen = 5

// DecodeVarInt decodes a VarInt from the start of buf and returns
// the value and the number of bytes it occupied.
//
// It returns proto.ErrIncomplete if buf ends before the VarInt terminates
// and proto.ErrVarIntTooBig if the VarInt does not terminate within 5 bytes
// or carries bits beyond 32.
func DecodeVarInt(buf []byte) (value int32, n int, err error) {
	var uval uint32
	for i := 0; i < MaxVarIntLen; i++ {
		if i >= len(buf) {
			return 0, 0, proto.ErrIncomplete
		}
		b := buf[i]
		if i == MaxVarIntLen-1 && b&0xF0 != 0 {
			// continuation or overflowing bits in the last byte
			return 0, 0, proto.ErrVarIntTooBig
		}
		uval |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(uval), i + 1, nil
		}
	}
	return 0, 0, proto.ErrVarIntTooBig
}

// AppendVarInt appends the canonical VarInt encoding of v to dst.
func AppendVarInt(dst []byte, v int32) []byte {
	uval := uint32(v)
	for uval >= 0x80 {
		dst = append(dst, byte(uval)|0x80)
		uval >>= 7
	}
	return append(dst, byte(uval))
}

// VarIntLen returns the number of bytes the VarInt encoding of v occupies.
func VarIntLen(v int32) int {
	uval := uint32(v)
	n := 1
	for uval >= 0x80 {
		uval >>= 7
		n++
	}
	return n
}

func WriteVarInt(writer io.Writer, val int) (err error) {
	var buf [MaxVarIntLen]byte
	_, err = writer.Write(AppendVarInt(buf[:0], int32(val)))
	return
}

func ReadVarInt(r io.Reader) (result int, err error) {
	var buf [MaxVarIntLen]byte
	for i := 0; i < MaxVarIntLen; i++ {
		buf[i], err = ReadUint8(r)
		if err != nil {
			return 0, err
		}
		if buf[i]&0x80 == 0 || i == MaxVarIntLen-1 {
			v, _, err := DecodeVarInt(buf[:i+1])
			return int(v), err
		}
	}
	return 0, proto.ErrVarIntTooBig
}
