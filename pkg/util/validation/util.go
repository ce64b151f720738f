// Package validation contains helpers for config validation.
package validation

import (
	"fmt"
	"net"
	"strconv"
)

// ValidHostPort checks that hostAndPort is a host:port pair with a valid port.
func ValidHostPort(hostAndPort string) error {
	_, port, err := net.SplitHostPort(hostAndPort)
	if err != nil {
		return err
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}
