package sift

import (
	"context"
	"os/user"
)

// Greylist defers first contact from unauthenticated senders through an
// external greylisting helper. The helper owns the tuple database; this
// stage only asks it for a decision.
type Greylist struct {
	Tool  *Tool
	Group string // group allowed to talk to the helper
}

func (g *Greylist) Name() string {
	return "greylist"
}

// Applies gates on the delivery facts. Authenticated or SPF-passed mail is
// never greylisted, and without the helper binary or its privileged group
// there is nothing to ask.
func (g *Greylist) Applies(c *Context) bool {
	if c.Authenticated() || c.SPFPass {
		return false
	}
	if !g.Tool.Available() {
		return false
	}
	return memberOfGroup(g.Group)
}

func (g *Greylist) Run(ctx context.Context, c *Context, spool *Spool) *StageResult {
	res, err := g.Tool.Run(ctx, nil, c.PeerIP(), c.Sender)
	if err != nil {
		Log.Warnf("[greylist] %v", err)
		return resultTempFail(reasonTempFailure)
	}
	if res.ExitCode != 0 {
		return resultTempFail("greylisted, please try again later")
	}
	return resultPass("X-Greylist: pass")
}

// memberOfGroup reports whether the current process user belongs to the
// named group. Root always qualifies.
func memberOfGroup(name string) bool {
	u, err := user.Current()
	if err != nil {
		return false
	}
	if u.Uid == "0" {
		return true
	}
	gids, err := u.GroupIds()
	if err != nil {
		return false
	}
	for _, gid := range gids {
		grp, err := user.LookupGroupId(gid)
		if err != nil {
			continue
		}
		if grp.Name == name {
			return true
		}
	}
	return false
}
