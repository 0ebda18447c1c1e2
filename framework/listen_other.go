//go:build !(linux || darwin || freebsd || netbsd || openbsd)
// +build !linux,!darwin,!freebsd,!netbsd,!openbsd

package framework

import (
	"net"
)

// listen opens a TCP listener on address.
// The backlog cannot be set on this platform and is left to the runtime.
func listen(address string, backlog int) (net.Listener, error) {
	return net.Listen("tcp", address)
}
