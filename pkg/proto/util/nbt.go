package util

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Tnze/go-mc/nbt"

	"go.minekube.com/kasumi/pkg/proto"
)

// ReadNBT reads a nameless network format binary tag.
// rd should implement io.ByteScanner to prevent the decoder from reading ahead.
func ReadNBT(rd io.Reader) (nbt.RawMessage, error) {
	dec := nbt.NewDecoder(rd)
	dec.NetworkFormat(true)
	var m nbt.RawMessage
	if _, err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return m, proto.ErrIncomplete
		}
		return m, fmt.Errorf("%w: invalid binary tag: %v", proto.ErrMalformedBuffer, err)
	}
	return m, nil
}

// WriteNBT encodes v as a nameless network format binary tag.
func WriteNBT(wr io.Writer, v any) error {
	enc := nbt.NewEncoder(wr)
	enc.NetworkFormat(true)
	return enc.Encode(v, "")
}

// WriteRawNBT writes an already encoded binary tag.
func WriteRawNBT(wr io.Writer, m nbt.RawMessage) error {
	return WriteNBT(wr, m)
}

// MarshalNBT encodes v into a binary tag.
func MarshalNBT(v any) (nbt.RawMessage, error) {
	buf := new(bytes.Buffer)
	if err := WriteNBT(buf, v); err != nil {
		return nbt.RawMessage{}, err
	}
	return ReadNBT(buf)
}
