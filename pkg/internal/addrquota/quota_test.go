package addrquota

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tcpAddr(s string) net.Addr {
	a, _ := net.ResolveTCPAddr("tcp", s)
	return a
}

func TestQuota_Blocked(t *testing.T) {
	q := NewQuota(0.001, 2, 16)
	a := tcpAddr("10.0.0.1:1000")
	assert.False(t, q.Blocked(a))
	assert.False(t, q.Blocked(a))
	assert.True(t, q.Blocked(a), "burst exhausted")

	// Same /24 shares the limiter.
	assert.True(t, q.Blocked(tcpAddr("10.0.0.77:2000")))
	assert.False(t, q.Blocked(tcpAddr("10.0.1.1:1000")))
}

func TestQuota_PipeAddr(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()
	q := NewQuota(0.001, 0, 16)
	assert.False(t, q.Blocked(c1.RemoteAddr()))
}

func TestIPKey(t *testing.T) {
	assert.Equal(t, "192.168.1.0", ipKey(tcpAddr("192.168.1.20:25565")))
	assert.Equal(t, "::", ipKey(tcpAddr("[::1]:25565")))
	assert.Equal(t, "", ipKey(nil))
}
