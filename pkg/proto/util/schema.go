package util

import (
	"bytes"
	"fmt"
	"io"

	"go.minekube.com/kasumi/pkg/proto"
)

// ReadFn reads a value of type T.
type ReadFn[T any] func(rd io.Reader) (T, error)

// WriteFn writes a value of type T.
type WriteFn[T any] func(wr io.Writer, v T) error

// Field is one named, positional field of a Schema.
type Field struct {
	Name   string
	Decode func(rd io.Reader) error
	Encode func(wr io.Writer) error
}

// F binds the struct field v to its read and write functions.
func F[T any](name string, v *T, read ReadFn[T], write WriteFn[T]) Field {
	return Field{
		Name: name,
		Decode: func(rd io.Reader) (err error) {
			*v, err = read(rd)
			return
		},
		Encode: func(wr io.Writer) error {
			return write(wr, *v)
		},
	}
}

// Schema is the ordered list of fields making up a packet or composite type.
// Fields are encoded and decoded strictly in declared order.
type Schema []Field

func (s Schema) Encode(wr io.Writer) error {
	for _, f := range s {
		if err := f.Encode(wr); err != nil {
			return fmt.Errorf("error encoding field %s: %w", f.Name, err)
		}
	}
	return nil
}

func (s Schema) Decode(rd io.Reader) error {
	for _, f := range s {
		if err := f.Decode(rd); err != nil {
			return fmt.Errorf("error decoding field %s: %w", f.Name, err)
		}
	}
	return nil
}

// Schemer is implemented by composite types declaring their fields.
type Schemer interface {
	Fields() Schema
}

// Composite returns the read and write functions of a composite type T
// whose pointer declares its Schema.
func Composite[T any, P interface {
	*T
	Schemer
}]() (ReadFn[T], WriteFn[T]) {
	read := func(rd io.Reader) (v T, err error) {
		err = P(&v).Fields().Decode(rd)
		return
	}
	write := func(wr io.Writer, v T) error {
		return P(&v).Fields().Encode(wr)
	}
	return read, write
}

// Optional is a value preceded by a boolean presence flag.
type Optional[T any] struct {
	Present bool
	Value   T
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: v}
}

func OptionalReader[T any](read ReadFn[T]) ReadFn[Optional[T]] {
	return func(rd io.Reader) (o Optional[T], err error) {
		if o.Present, err = ReadBool(rd); err != nil || !o.Present {
			return
		}
		o.Value, err = read(rd)
		return
	}
}

func OptionalWriter[T any](write WriteFn[T]) WriteFn[Optional[T]] {
	return func(wr io.Writer, o Optional[T]) error {
		if err := WriteBool(wr, o.Present); err != nil || !o.Present {
			return err
		}
		return write(wr, o.Value)
	}
}

// maxPreallocate bounds the capacity allocated up front for a
// declared element count before the elements were actually read.
const maxPreallocate = 64

// PrefixedArrayReader reads a VarInt element count followed by the elements.
func PrefixedArrayReader[T any](read ReadFn[T]) ReadFn[[]T] {
	return func(rd io.Reader) ([]T, error) {
		n, err := ReadVarInt(rd)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative array length %d", proto.ErrMalformedBuffer, n)
		}
		var s []T
		if n > 0 {
			s = make([]T, 0, min(n, maxPreallocate))
		}
		for i := 0; i < n; i++ {
			v, err := read(rd)
			if err != nil {
				return nil, fmt.Errorf("error reading element %d: %w", i, err)
			}
			s = append(s, v)
		}
		return s, nil
	}
}

func PrefixedArrayWriter[T any](write WriteFn[T]) WriteFn[[]T] {
	return func(wr io.Writer, s []T) error {
		if err := WriteVarInt(wr, len(s)); err != nil {
			return err
		}
		for i, v := range s {
			if err := write(wr, v); err != nil {
				return fmt.Errorf("error writing element %d: %w", i, err)
			}
		}
		return nil
	}
}

// Enum is a VarInt enumeration with explicit discriminants.
type Enum interface {
	~int32
	Known() bool
}

// ReadEnum reads a VarInt discriminant and fails with
// *proto.UnknownVariantError if it is not a known variant of E.
func ReadEnum[E Enum](rd io.Reader) (E, error) {
	v, err := ReadVarInt(rd)
	if err != nil {
		return 0, err
	}
	e := E(v)
	if !e.Known() {
		return e, &proto.UnknownVariantError{Type: fmt.Sprintf("%T", e), Value: int32(v)}
	}
	return e, nil
}

func WriteEnum[E Enum](wr io.Writer, e E) error {
	if !e.Known() {
		return &proto.UnknownVariantError{Type: fmt.Sprintf("%T", e), Value: int32(e)}
	}
	return WriteVarInt(wr, int(e))
}

// Decode reads a value from the start of buf and returns it
// together with the number of bytes consumed.
func Decode[T any](buf []byte, read ReadFn[T]) (v T, n int, err error) {
	rd := bytes.NewReader(buf)
	v, err = read(rd)
	return v, len(buf) - rd.Len(), err
}

// Encode writes v into a new byte slice.
func Encode[T any](v T, write WriteFn[T]) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := write(buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
