package state

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/codec"
	"go.minekube.com/kasumi/pkg/proto/util"
)

type statusRequest struct{}

func (*statusRequest) ID() proto.PacketID { return 0x00 }
func (*statusRequest) State() proto.State { return proto.StatusState }
func (*statusRequest) Encode(*proto.PacketContext, io.Writer) error { return nil }
func (*statusRequest) Decode(*proto.PacketContext, io.Reader) error { return nil }

type loginStart struct{ Name string }

func (*loginStart) ID() proto.PacketID { return 0x00 }
func (*loginStart) State() proto.State { return proto.LoginState }
func (p *loginStart) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteString(wr, p.Name)
}
func (p *loginStart) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	p.Name, err = util.StringReader(16)(rd)
	return
}

type fakeConn struct {
	state   proto.State
	written []proto.Packet
}

func (c *fakeConn) Context() context.Context { return context.Background() }
func (c *fakeConn) State() proto.State       { return c.state }
func (c *fakeConn) SetState(next proto.State) error {
	if !c.state.CanTransition(next) {
		return proto.ErrIllegalTransition
	}
	c.state = next
	return nil
}
func (c *fakeConn) WritePacket(p proto.Packet) error {
	c.written = append(c.written, p)
	return nil
}

func stringPayload(s string) []byte {
	b, _ := util.Encode(s, util.WriteString)
	return b
}

func TestRegistry_StateScoping(t *testing.T) {
	var statusCalls, loginCalls []string
	b := NewBuilder()
	Register[statusRequest](b)
	Register[loginStart](b)
	Handle(b, func(c Conn, p *statusRequest) error {
		statusCalls = append(statusCalls, c.State().String())
		return nil
	})
	Handle(b, func(c Conn, p *loginStart) error {
		loginCalls = append(loginCalls, p.Name)
		return nil
	})
	r, err := b.Build()
	require.NoError(t, err)

	conn := &fakeConn{state: proto.StatusState}
	res, err := r.Dispatch(conn, codec.Frame{ID: 0x00})
	require.NoError(t, err)
	assert.Equal(t, Handled, res)

	conn.state = proto.LoginState
	res, err = r.Dispatch(conn, codec.Frame{ID: 0x00, Payload: stringPayload("Steve")})
	require.NoError(t, err)
	assert.Equal(t, Handled, res)

	assert.Equal(t, []string{"Status"}, statusCalls)
	assert.Equal(t, []string{"Steve"}, loginCalls)
}

func TestRegistry_UnknownID(t *testing.T) {
	b := NewBuilder()
	Register[statusRequest](b)
	r, err := b.Build()
	require.NoError(t, err)

	res, err := r.Dispatch(&fakeConn{state: proto.StatusState}, codec.Frame{ID: 0x7f})
	require.NoError(t, err)
	assert.Equal(t, Unknown, res)

	// known id in another state is unknown here
	res, err = r.Dispatch(&fakeConn{state: proto.PlayState}, codec.Frame{ID: 0x00})
	require.NoError(t, err)
	assert.Equal(t, Unknown, res)
}

func TestRegistry_Ignored(t *testing.T) {
	b := NewBuilder()
	Register[statusRequest](b)
	r, err := b.Build()
	require.NoError(t, err)

	res, err := r.Dispatch(&fakeConn{state: proto.StatusState}, codec.Frame{ID: 0x00})
	require.NoError(t, err)
	assert.Equal(t, Ignored, res)
}

func TestRegistry_DecodeErrors(t *testing.T) {
	b := NewBuilder()
	Register[loginStart](b)
	Handle(b, func(c Conn, p *loginStart) error {
		assert.Fail(t, "handler must not be called")
		return nil
	})
	r, err := b.Build()
	require.NoError(t, err)
	conn := &fakeConn{state: proto.LoginState}

	// declared string length exceeds payload
	res, err := r.Dispatch(conn, codec.Frame{ID: 0x00, Payload: []byte{0x05, 'a'}})
	require.NoError(t, err)
	assert.Equal(t, Skipped, res)

	// name longer than 16 characters
	res, err = r.Dispatch(conn, codec.Frame{ID: 0x00, Payload: stringPayload("abcdefghijklmnopq")})
	assert.ErrorIs(t, err, proto.ErrStringTooLong)
	assert.Equal(t, Failed, res)
	assert.Equal(t, "Failed", res.String())
}

func TestRegistry_HandlerError(t *testing.T) {
	b := NewBuilder()
	Register[statusRequest](b)
	Handle(b, func(c Conn, p *statusRequest) error { return proto.ErrConnDone })
	r, err := b.Build()
	require.NoError(t, err)

	res, err := r.Dispatch(&fakeConn{state: proto.StatusState}, codec.Frame{ID: 0x00})
	assert.Equal(t, Handled, res)
	assert.ErrorIs(t, err, proto.ErrConnDone)
}

func TestBuilder_DuplicateKeys(t *testing.T) {
	b := NewBuilder()
	Register[statusRequest](b)
	Register[statusRequest](b)
	Handle(b, func(Conn, *statusRequest) error { return nil })
	Handle(b, func(Conn, *statusRequest) error { return nil })

	r, err := b.Build()
	assert.Nil(t, r)
	require.ErrorIs(t, err, proto.ErrDuplicateKey)
	assert.Len(t, err.(interface{ Unwrap() []error }).Unwrap(), 2)
}

func TestBuilder_HandlerWithoutDecoder(t *testing.T) {
	b := NewBuilder()
	Handle(b, func(Conn, *loginStart) error { return nil })
	_, err := b.Build()
	require.Error(t, err)
	assert.False(t, errors.Is(err, proto.ErrDuplicateKey))
}

func TestRegistry_Keys(t *testing.T) {
	b := NewBuilder()
	Register[loginStart](b)
	Register[statusRequest](b)
	r, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []Key{
		{State: proto.StatusState, ID: 0x00},
		{State: proto.LoginState, ID: 0x00},
	}, r.Keys())
}
