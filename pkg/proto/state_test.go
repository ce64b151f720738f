package proto

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_CanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{HandshakeState, StatusState, true},
		{HandshakeState, LoginState, true},
		{HandshakeState, PlayState, false},
		{StatusState, LoginState, false},
		{LoginState, ConfigurationState, true},
		{LoginState, PlayState, false},
		{ConfigurationState, PlayState, true},
		{PlayState, ConfigurationState, true},
		{PlayState, HandshakeState, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(fmt.Errorf("reading field: %w", ErrIncomplete)))
	assert.True(t, IsFatal(ErrVarIntTooBig))
	assert.True(t, IsFatal(&UnknownVariantError{Type: "Intent", Value: 9}))
	assert.True(t, IsFatal(errors.New("connection reset")))
}

func TestPacketID_String(t *testing.T) {
	assert.Equal(t, "0x2b", PacketID(0x2B).String())
	assert.Equal(t, "0x00", PacketID(0).String())
}
