package sift

import "context"

// Stage is one filter in the fixed pipeline order. Applies reports whether
// the stage runs for this delivery; Run produces the verdict. A stage that
// cannot act must skip, not reject.
type Stage interface {
	Name() string
	Applies(c *Context) bool
	Run(ctx context.Context, c *Context, spool *Spool) *StageResult
}

// runStage executes one stage with a panic guard. A crashing stage turns
// into a temporary rejection so the sender retries once the fault is fixed.
func runStage(ctx context.Context, st Stage, c *Context, spool *Spool) (res *StageResult) {
	defer func() {
		if r := recover(); r != nil {
			Log.Errorf("[%s] panic: %v", st.Name(), r)
			res = resultTempFail(reasonTempFailure)
		}
	}()
	if !st.Applies(c) {
		Log.Debugf("[%s] does not apply, skipping", st.Name())
		return resultSkip()
	}
	return st.Run(ctx, c, spool)
}
