package sift

import (
	"net"

	"blitiri.com.ar/go/spf"
)

// ResolveSPF evaluates the sender policy for the peer address locally. It is
// a fallback for callers that do not export an SPF result; an explicit
// SPF_RESULT always wins over this.
func (c *Context) ResolveSPF() bool {
	ip := net.ParseIP(c.PeerIP())
	if ip == nil {
		return false
	}
	result, _ := spf.CheckHostWithSender(ip, c.Helo, c.Sender)
	return result == spf.Pass
}
