package util

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"go.minekube.com/common/minecraft/key"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/util/uuid"
)

func WriteString(writer io.Writer, val string) error {
	if len(val) > MaxStringLength {
		return fmt.Errorf("%w: %d bytes", proto.ErrStringTooLong, len(val))
	}
	if !utf8.ValidString(val) {
		return proto.ErrInvalidString
	}
	return WriteBytes(writer, []byte(val))
}

// WriteBytes writes a VarInt length-prefixed byte array.
func WriteBytes(writer io.Writer, b []byte) error {
	if err := WriteVarInt(writer, len(b)); err != nil {
		return err
	}
	_, err := writer.Write(b)
	return err
}

// WriteRaw writes b without a length prefix.
func WriteRaw(writer io.Writer, b []byte) error {
	_, err := writer.Write(b)
	return err
}

func WriteBool(writer io.Writer, val bool) error {
	if val {
		return WriteUint8(writer, 1)
	}
	return WriteUint8(writer, 0)
}

func WriteUint8(writer io.Writer, val uint8) error {
	_, err := writer.Write([]byte{val})
	return err
}

func WriteInt8(writer io.Writer, val int8) error {
	return WriteUint8(writer, uint8(val))
}

func WriteUint16(writer io.Writer, val uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], val)
	_, err := writer.Write(b[:])
	return err
}

func WriteInt16(writer io.Writer, val int16) error {
	return WriteUint16(writer, uint16(val))
}

func WriteUint32(writer io.Writer, val uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], val)
	_, err := writer.Write(b[:])
	return err
}

func WriteInt32(writer io.Writer, val int32) error {
	return WriteUint32(writer, uint32(val))
}

func WriteUint64(writer io.Writer, val uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], val)
	_, err := writer.Write(b[:])
	return err
}

func WriteInt64(writer io.Writer, val int64) error {
	return WriteUint64(writer, uint64(val))
}

func WriteFloat32(writer io.Writer, val float32) error {
	return WriteUint32(writer, math.Float32bits(val))
}

func WriteFloat64(writer io.Writer, val float64) error {
	return WriteUint64(writer, math.Float64bits(val))
}

func WriteUUID(writer io.Writer, id uuid.UUID) error {
	_, err := writer.Write(id[:])
	return err
}

// WriteKey writes an identifier as namespace:value.
func WriteKey(writer io.Writer, k key.Key) error {
	if k == nil {
		return fmt.Errorf("%w: nil identifier", proto.ErrMalformedBuffer)
	}
	return WriteString(writer, k.String())
}

func WritePosition(writer io.Writer, pos Position) error {
	return WriteInt64(writer, pos.Long())
}

// WriteLongArray writes a VarInt count followed by the longs.
func WriteLongArray(writer io.Writer, longs []int64) error {
	if err := WriteVarInt(writer, len(longs)); err != nil {
		return err
	}
	for _, l := range longs {
		if err := WriteInt64(writer, l); err != nil {
			return err
		}
	}
	return nil
}
