package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
)

type ping struct{ Payload int64 }

func (p *ping) ID() proto.PacketID { return 0x01 }
func (p *ping) State() proto.State { return proto.StatusState }
func (p *ping) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteInt64(wr, p.Payload)
}
func (p *ping) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	p.Payload, err = util.ReadInt64(rd)
	return
}

// shortWriter accepts at most 3 bytes per call.
type shortWriter struct{ bytes.Buffer }

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > 3 {
		p = p[:3]
	}
	return w.Buffer.Write(p)
}

func TestEncoder_WritePacket(t *testing.T) {
	w := new(shortWriter)
	enc := NewEncoder(w, proto.ClientBound)
	n, err := enc.WritePacket(&ping{Payload: 42})
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []byte{0x09, 0x01, 0, 0, 0, 0, 0, 0, 0, 42}, w.Bytes())
}

type stuckWriter struct{}

func (stuckWriter) Write([]byte) (int, error) { return 0, nil }

func TestEncoder_NoProgress(t *testing.T) {
	enc := NewEncoder(stuckWriter{}, proto.ClientBound)
	_, err := enc.WritePacket(&ping{})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestDecoder_ReadFrame(t *testing.T) {
	stream := new(bytes.Buffer)
	enc := NewEncoder(stream, proto.ClientBound)
	_, err := enc.WritePacket(&ping{Payload: 1})
	require.NoError(t, err)
	_, err = enc.WritePacket(&ping{Payload: 2})
	require.NoError(t, err)

	dec := NewDecoder(iotest.OneByteReader(stream), 0, logr.Discard())
	for _, want := range []int64{1, 2} {
		frame, err := dec.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, proto.PacketID(0x01), frame.ID)

		p := new(ping)
		require.NoError(t, p.Decode(nil, bytes.NewReader(frame.Payload)))
		assert.Equal(t, want, p.Payload)
	}

	_, err = dec.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_DataWithError(t *testing.T) {
	stream := bytes.NewReader(frameBytes(0x00, nil))
	dec := NewDecoder(iotest.DataErrReader(stream), 0, logr.Discard())
	frame, err := dec.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, proto.PacketID(0x00), frame.ID)
	_, err = dec.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_Malformed(t *testing.T) {
	dec := NewDecoder(bytes.NewReader(util.AppendVarInt(nil, -1)), 0, logr.Discard())
	_, err := dec.ReadFrame()
	var malformed *proto.MalformedPacketError
	assert.True(t, errors.As(err, &malformed))
}
