package sift

import (
	"net"
	"os"
	"strings"
)

// Context holds the per-message facts resolved by the calling mail system.
// It is built once before the pipeline starts and never mutated by stages.
type Context struct {
	AuthUser   string // Authenticated identity, empty when unauthenticated
	SPFPass    bool   // Caller-resolved SPF verdict
	RemoteAddr string // Peer address as "ip:port" or a bare ip
	Sender     string // Envelope sender (MAIL FROM)
	Helo       string // HELO/EHLO name, only consulted by the SPF fallback
}

// ContextFromEnviron builds a Context from the environment exported by the
// caller: AUTH_USER, SPF_RESULT, REMOTE_ADDR, MAIL_FROM and HELO_NAME.
func ContextFromEnviron() *Context {
	return &Context{
		AuthUser:   os.Getenv("AUTH_USER"),
		SPFPass:    spfPassed(os.Getenv("SPF_RESULT")),
		RemoteAddr: os.Getenv("REMOTE_ADDR"),
		Sender:     os.Getenv("MAIL_FROM"),
		Helo:       os.Getenv("HELO_NAME"),
	}
}

// SPFProvided reports whether the caller exported an SPF result at all,
// as opposed to an explicit failure.
func SPFProvided() bool {
	_, ok := os.LookupEnv("SPF_RESULT")
	return ok
}

func spfPassed(result string) bool {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "pass", "yes", "1":
		return true
	}
	return false
}

// Authenticated reports whether the sender authenticated to the caller.
func (c *Context) Authenticated() bool {
	return c.AuthUser != ""
}

// PeerIP returns the remote address with any trailing port stripped.
func (c *Context) PeerIP() string {
	host, _, err := net.SplitHostPort(c.RemoteAddr)
	if err != nil {
		return strings.Trim(c.RemoteAddr, "[]")
	}
	return host
}

// SenderDomain returns the lowercased domain part of the envelope sender,
// or an empty string when the sender has none.
func (c *Context) SenderDomain() string {
	i := strings.LastIndex(c.Sender, "@")
	if i < 0 || i == len(c.Sender)-1 {
		return ""
	}
	return strings.ToLower(c.Sender[i+1:])
}
