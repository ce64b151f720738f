package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidHostPort(t *testing.T) {
	for _, s := range []string{"0.0.0.0:25565", "localhost:0", "[::1]:25565", ":25565"} {
		assert.NoError(t, ValidHostPort(s), s)
	}
	for _, s := range []string{"", "localhost", "localhost:port", "localhost:70000"} {
		assert.Error(t, ValidHostPort(s), s)
	}
}
