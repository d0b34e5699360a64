package sift

import "context"

// Spam scores the message through a SpamAssassin-compatible client.
type Spam struct {
	Tool *Tool
}

func (s *Spam) Name() string {
	return "spam"
}

func (s *Spam) Applies(c *Context) bool {
	return s.Tool.Available()
}

// Run pipes the message to the scorer. A zero exit accepts and records the
// score; any clean non-zero exit means the scorer judged it spam.
func (s *Spam) Run(ctx context.Context, c *Context, spool *Spool) *StageResult {
	in, err := spool.Reader()
	if err != nil {
		Log.Warnf("[spam] %v", err)
		return resultTempFail(reasonTempFailure)
	}
	res, err := s.Tool.Run(ctx, in)
	if err != nil {
		Log.Warnf("[spam] %v", err)
		return resultTempFail(reasonTempFailure)
	}
	if res.ExitCode != 0 {
		return resultReject("spam detected")
	}
	if score := res.Out(); score != "" {
		return resultPass("X-Spam-Score: " + score)
	}
	return resultPass()
}
