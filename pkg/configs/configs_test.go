package configs

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(DefaultConfigBytes)))
	assert.Equal(t, "0.0.0.0:25565", v.GetString("bind"))
	assert.Equal(t, 2097151, v.GetInt("maxFrameSize"))
	assert.Equal(t, []int{85, 10, 10, 9}, v.GetIntSlice("world.layers"))
	assert.True(t, v.GetBool("login.offlineUuids"))
}
