package sift

import "context"

// Antivirus hands the message to the clamd scanner client, run in
// infected-only mode so a clean scan stays silent.
type Antivirus struct {
	Tool *Tool
}

func (a *Antivirus) Name() string {
	return "antivirus"
}

func (a *Antivirus) Applies(c *Context) bool {
	return a.Tool.Available()
}

func (a *Antivirus) Run(ctx context.Context, c *Context, spool *Spool) *StageResult {
	in, err := spool.Reader()
	if err != nil {
		Log.Warnf("[antivirus] %v", err)
		return resultTempFail(reasonTempFailure)
	}
	res, err := a.Tool.Run(ctx, in)
	if err != nil {
		Log.Warnf("[antivirus] %v", err)
		return resultTempFail(reasonTempFailure)
	}
	if res.ExitCode != 0 {
		return resultReject("virus detected")
	}
	return resultPass("X-Virus-Scanned: pass")
}
