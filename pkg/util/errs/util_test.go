package errs

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSilentError(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("reading: %w", WrapSilent(base))
	assert.True(t, IsSilent(err))
	assert.ErrorIs(t, err, base)
	assert.EqualError(t, err, "reading: boom")

	assert.False(t, IsSilent(base))
	assert.NoError(t, WrapSilent(nil))

	err = NewSilentErr("client %s sent junk", "bob")
	require.True(t, IsSilent(err))
	assert.EqualError(t, err, "client bob sent junk")
}

func TestIsConnClosedErr(t *testing.T) {
	for _, err := range []error{
		net.ErrClosed,
		io.EOF,
		fmt.Errorf("read: %w", io.ErrClosedPipe),
		&net.OpError{Op: "read", Err: os.ErrDeadlineExceeded},
	} {
		assert.True(t, IsConnClosedErr(err), err.Error())
	}
	assert.False(t, IsConnClosedErr(nil))
	assert.False(t, IsConnClosedErr(errors.New("other")))
}
