package configutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixed(t *testing.T) {
	got := map[string]any{}
	var root SetDefaultFunc = func(key string, value any) { got[key] = value }

	Prefixed("world", root).SetDefault("viewDistance", 2)
	Prefixed("a", Prefixed("b", root)).SetDefault("c", true)
	var nilFunc SetDefaultFunc
	nilFunc.SetDefault("ignored", 1)

	assert.Equal(t, map[string]any{"world.viewDistance": 2, "b.a.c": true}, got)
}
