package componentutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.minekube.com/common/minecraft/component"
)

func TestParseTextComponent(t *testing.T) {
	text, err := ParseTextComponent(`{"text":"Hello"}`)
	require.NoError(t, err)
	assert.Equal(t, "Hello", text.Content)

	text, err = ParseTextComponent("plain")
	require.NoError(t, err)
	b, err := MarshalJSON(text)
	require.NoError(t, err)
	assert.Contains(t, string(b), "plain")

	_, err = ParseTextComponent("{broken")
	assert.Error(t, err)
}

func TestMarshalJSON(t *testing.T) {
	b, err := MarshalJSON(&component.Text{Content: "A Kasumi server"})
	require.NoError(t, err)
	assert.Contains(t, string(b), "A Kasumi server")
}
