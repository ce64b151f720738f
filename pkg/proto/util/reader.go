package util

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"go.minekube.com/common/minecraft/key"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/util/uuid"
)

// MaxStringLength is the maximum byte length of a protocol string.
const MaxStringLength = 32767

// readFull reads exactly len(p) bytes and reports running out of input as proto.ErrIncomplete.
func readFull(rd io.Reader, p []byte) error {
	_, err := io.ReadFull(rd, p)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return proto.ErrIncomplete
	}
	return err
}

func ReadString(rd io.Reader) (string, error) {
	return ReadStringMax(rd, MaxStringLength)
}

// ReadStringMax reads a string of at most max characters.
func ReadStringMax(rd io.Reader, max int) (string, error) {
	length, err := ReadVarInt(rd)
	if err != nil {
		return "", err
	}
	if length < 0 {
		return "", fmt.Errorf("%w: negative string length %d", proto.ErrMalformedBuffer, length)
	}
	if length > MaxStringLength {
		return "", fmt.Errorf("%w: %d bytes", proto.ErrStringTooLong, length)
	}
	b := make([]byte, length)
	if err = readFull(rd, b); err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", proto.ErrInvalidString
	}
	if n := utf8.RuneCount(b); n > max {
		return "", fmt.Errorf("%w: %d characters exceed maximum %d", proto.ErrStringTooLong, n, max)
	}
	return string(b), nil
}

// StringReader returns a ReadFn reading strings of at most max characters.
func StringReader(max int) ReadFn[string] {
	return func(rd io.Reader) (string, error) { return ReadStringMax(rd, max) }
}

// ReadBytesMax reads a VarInt length-prefixed byte array of at most max bytes.
func ReadBytesMax(rd io.Reader, max int) ([]byte, error) {
	length, err := ReadVarInt(rd)
	if err != nil {
		return nil, err
	}
	if length < 0 || length > max {
		return nil, fmt.Errorf("%w: byte array length %d out of range [0,%d]", proto.ErrMalformedBuffer, length, max)
	}
	b := make([]byte, length)
	return b, readFull(rd, b)
}

// ReadRemaining reads all bytes left in rd.
func ReadRemaining(rd io.Reader) ([]byte, error) {
	return io.ReadAll(rd)
}

// ReadBool reads a boolean byte. Any value other than 0x01 reads as false.
func ReadBool(rd io.Reader) (bool, error) {
	b, err := ReadUint8(rd)
	return b == 0x01, err
}

func ReadUint8(rd io.Reader) (val uint8, err error) {
	if br, ok := rd.(io.ByteReader); ok {
		val, err = br.ReadByte()
		if errors.Is(err, io.EOF) {
			err = proto.ErrIncomplete
		}
		return
	}
	var b [1]byte
	err = readFull(rd, b[:])
	return b[0], err
}

func ReadInt8(rd io.Reader) (int8, error) {
	v, err := ReadUint8(rd)
	return int8(v), err
}

func ReadUint16(rd io.Reader) (uint16, error) {
	var b [2]byte
	err := readFull(rd, b[:])
	return binary.BigEndian.Uint16(b[:]), err
}

func ReadInt16(rd io.Reader) (int16, error) {
	v, err := ReadUint16(rd)
	return int16(v), err
}

func ReadUint32(rd io.Reader) (uint32, error) {
	var b [4]byte
	err := readFull(rd, b[:])
	return binary.BigEndian.Uint32(b[:]), err
}

func ReadInt32(rd io.Reader) (int32, error) {
	v, err := ReadUint32(rd)
	return int32(v), err
}

func ReadUint64(rd io.Reader) (uint64, error) {
	var b [8]byte
	err := readFull(rd, b[:])
	return binary.BigEndian.Uint64(b[:]), err
}

func ReadInt64(rd io.Reader) (int64, error) {
	v, err := ReadUint64(rd)
	return int64(v), err
}

func ReadFloat32(rd io.Reader) (float32, error) {
	v, err := ReadUint32(rd)
	return math.Float32frombits(v), err
}

func ReadFloat64(rd io.Reader) (float64, error) {
	v, err := ReadUint64(rd)
	return math.Float64frombits(v), err
}

// ReadUUID reads 16 raw bytes.
func ReadUUID(rd io.Reader) (id uuid.UUID, err error) {
	err = readFull(rd, id[:])
	return
}

// ReadKey reads an identifier string of the form namespace:value.
// A missing namespace defaults to minecraft.
func ReadKey(rd io.Reader) (key.Key, error) {
	s, err := ReadString(rd)
	if err != nil {
		return nil, err
	}
	k, err := ParseKey(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", proto.ErrMalformedBuffer, err)
	}
	return k, nil
}

// ParseKey parses an identifier, defaulting to the minecraft namespace.
func ParseKey(s string) (key.Key, error) {
	if s == "" {
		return nil, errors.New("empty identifier")
	}
	if !strings.Contains(s, ":") {
		s = key.MinecraftNamespace + ":" + s
	}
	k, err := key.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier %q: %w", s, err)
	}
	return k, nil
}

// ReadPosition reads a block position packed into a long.
func ReadPosition(rd io.Reader) (Position, error) {
	v, err := ReadInt64(rd)
	return PositionFromLong(v), err
}

// ReadLongArray reads a VarInt count followed by that many longs.
func ReadLongArray(rd io.Reader, max int) ([]int64, error) {
	n, err := ReadVarInt(rd)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > max {
		return nil, fmt.Errorf("%w: long array length %d out of range [0,%d]", proto.ErrMalformedBuffer, n, max)
	}
	var longs []int64
	if n > 0 {
		longs = make([]int64, 0, min(n, 64))
	}
	for i := 0; i < n; i++ {
		v, err := ReadInt64(rd)
		if err != nil {
			return nil, err
		}
		longs = append(longs, v)
	}
	return longs, nil
}
