package util

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/util/uuid"
)

type testColor int32

const (
	red testColor = iota
	green
)

func (c testColor) Known() bool { return c == red || c == green }

type testRecord struct {
	Name   string
	Color  testColor
	Tags   []string
	Owner  Optional[uuid.UUID]
	Health float32
}

func (r *testRecord) Fields() Schema {
	return Schema{
		F("name", &r.Name, StringReader(16), WriteString),
		F("color", &r.Color, ReadEnum[testColor], WriteEnum[testColor]),
		F("tags", &r.Tags, PrefixedArrayReader(ReadString), PrefixedArrayWriter(WriteString)),
		F("owner", &r.Owner, OptionalReader(ReadUUID), OptionalWriter(WriteUUID)),
		F("health", &r.Health, ReadFloat32, WriteFloat32),
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	in := testRecord{
		Name:   "kasumi",
		Color:  green,
		Tags:   []string{"a", "b"},
		Owner:  Some(uuid.OfflinePlayerUUID("kasumi")),
		Health: 20,
	}
	buf := new(bytes.Buffer)
	require.NoError(t, in.Fields().Encode(buf))

	var out testRecord
	require.NoError(t, out.Fields().Decode(buf))
	assert.Equal(t, in, out)
	assert.Zero(t, buf.Len())
}

func TestSchemaFieldOrder(t *testing.T) {
	buf := new(bytes.Buffer)
	r := testRecord{Name: "a", Color: red}
	require.NoError(t, r.Fields().Encode(buf))
	// name, color, empty tags, absent owner, health
	assert.Equal(t, []byte{0x01, 'a', 0x00, 0x00, 0x00, 0, 0, 0, 0}, buf.Bytes())
}

func TestSchemaDecode_UnknownVariant(t *testing.T) {
	var r testRecord
	err := r.Fields().Decode(bytes.NewReader([]byte{0x01, 'a', 0x07}))
	var unknown *proto.UnknownVariantError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, int32(7), unknown.Value)
	assert.Contains(t, err.Error(), "field color")
	assert.True(t, proto.IsFatal(err))
}

func TestSchemaDecode_Incomplete(t *testing.T) {
	var r testRecord
	err := r.Fields().Decode(bytes.NewReader([]byte{0x01, 'a', 0x01, 0x00, 0x01}))
	assert.ErrorIs(t, err, proto.ErrIncomplete)
	assert.False(t, proto.IsFatal(err))
}

func TestComposite(t *testing.T) {
	read, write := Composite[testRecord]()
	b, err := Encode(testRecord{Name: "x", Color: green, Tags: []string{"t"}}, write)
	require.NoError(t, err)

	v, n, err := Decode(b, read)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)
	assert.Equal(t, "x", v.Name)
	assert.Equal(t, []string{"t"}, v.Tags)
}

func TestPrefixedArray_NegativeCount(t *testing.T) {
	_, _, err := Decode(AppendVarInt(nil, -1), PrefixedArrayReader(ReadInt32))
	assert.ErrorIs(t, err, proto.ErrMalformedBuffer)
}

func TestPrefixedArray_HugeCountDoesNotPreallocate(t *testing.T) {
	_, _, err := Decode(AppendVarInt(nil, 1<<30), PrefixedArrayReader(ReadInt64))
	assert.ErrorIs(t, err, proto.ErrIncomplete)
}

func TestOptional(t *testing.T) {
	b, err := Encode(Optional[int32]{}, OptionalWriter(WriteInt32))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, b)

	b, err = Encode(Some[int32](5), OptionalWriter(WriteInt32))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0, 0, 0, 5}, b)

	v, n, err := Decode(b, OptionalReader(ReadInt32))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, Some[int32](5), v)
}

func TestReadBool_Lenient(t *testing.T) {
	for b, want := range map[byte]bool{0x00: false, 0x01: true, 0x02: false, 0xff: false} {
		v, err := ReadBool(bytes.NewReader([]byte{b}))
		require.NoError(t, err)
		assert.Equal(t, want, v, "byte %#x", b)
	}
}

func TestString(t *testing.T) {
	b, err := Encode("héllo", WriteString)
	require.NoError(t, err)
	s, n, err := Decode(b, ReadString)
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)
	assert.Equal(t, len(b), n)
}

func TestString_Errors(t *testing.T) {
	t.Run("too long to write", func(t *testing.T) {
		_, err := Encode(strings.Repeat("a", MaxStringLength+1), WriteString)
		assert.ErrorIs(t, err, proto.ErrStringTooLong)
	})
	t.Run("declared length too long", func(t *testing.T) {
		_, _, err := Decode(AppendVarInt(nil, MaxStringLength+1), ReadString)
		assert.ErrorIs(t, err, proto.ErrStringTooLong)
	})
	t.Run("field maximum", func(t *testing.T) {
		b, err := Encode(strings.Repeat("a", 17), WriteString)
		require.NoError(t, err)
		_, _, err = Decode(b, StringReader(16))
		assert.ErrorIs(t, err, proto.ErrStringTooLong)
	})
	t.Run("invalid utf8", func(t *testing.T) {
		_, _, err := Decode([]byte{0x02, 0xc3, 0x28}, ReadString)
		assert.ErrorIs(t, err, proto.ErrInvalidString)
	})
	t.Run("negative length", func(t *testing.T) {
		_, _, err := Decode(AppendVarInt(nil, -5), ReadString)
		assert.ErrorIs(t, err, proto.ErrMalformedBuffer)
	})
	t.Run("truncated", func(t *testing.T) {
		_, _, err := Decode([]byte{0x05, 'a', 'b'}, ReadString)
		assert.ErrorIs(t, err, proto.ErrIncomplete)
	})
}

func TestPrimitivesBigEndian(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteUint16(buf, 25565))
	require.NoError(t, WriteInt64(buf, -2))
	require.NoError(t, WriteFloat64(buf, 1.5))
	assert.Equal(t, []byte{0x63, 0xdd}, buf.Bytes()[:2])

	u, err := ReadUint16(buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(25565), u)
	l, err := ReadInt64(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), l)
	f, err := ReadFloat64(buf)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	_, err = ReadInt32(buf)
	assert.ErrorIs(t, err, proto.ErrIncomplete)
	_, err = ReadRemaining(io.LimitReader(buf, 0))
	assert.NoError(t, err)
}

func TestKey(t *testing.T) {
	b, err := Encode("stone", WriteString)
	require.NoError(t, err)
	k, _, err := Decode(b, ReadKey)
	require.NoError(t, err)
	assert.Equal(t, "minecraft", k.Namespace())
	assert.Equal(t, "stone", k.Value())

	k, err = ParseKey("kasumi:flat")
	require.NoError(t, err)
	assert.Equal(t, "kasumi:flat", k.String())
	_, err = ParseKey("")
	assert.Error(t, err)
	_, err = ParseKey("Bad Key")
	assert.Error(t, err)
}

func TestPosition(t *testing.T) {
	for _, p := range []Position{{0, 0, 0}, {1, 64, -1}, {-33554432, -2048, 33554431}} {
		assert.Equal(t, p, PositionFromLong(p.Long()))
	}
}

func TestUUID(t *testing.T) {
	id := uuid.OfflinePlayerUUID("Notch")
	b, err := Encode(id, WriteUUID)
	require.NoError(t, err)
	require.Len(t, b, 16)
	got, n, err := Decode(b, ReadUUID)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, id, got)
}
