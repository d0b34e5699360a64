package sift

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Outcome is the pipeline's terminal answer for one message.
type Outcome struct {
	Verdict Verdict
	Headers []string
	Reason  string
	Elapse
}

// Pipeline drives the fixed stage chain over one message. The order never
// changes; stages that do not apply skip themselves.
type Pipeline struct {
	Stages    []Stage
	Hooks     []Hook
	SessionID string
}

// NewPipeline wires the stage chain from config. Disabled stages are left
// out entirely; everything else self-gates at run time.
func NewPipeline(cfg *Config) *Pipeline {
	timeout := cfg.GetTimeout()
	p := &Pipeline{SessionID: GenID().String()}
	if !cfg.Greylist.Disable {
		p.Stages = append(p.Stages, &Greylist{
			Tool:  LookupTool(cfg.Greylist.Command, nil, timeout),
			Group: cfg.Greylist.Group,
		})
	}
	if !cfg.Spam.Disable {
		p.Stages = append(p.Stages, &Spam{
			Tool: LookupTool(cfg.Spam.Command, cfg.Spam.Args, timeout),
		})
	}
	if !cfg.Rspamd.Disable {
		p.Stages = append(p.Stages, &Rspamd{
			Adapter: LookupTool(cfg.Rspamd.Adapter, nil, timeout),
			Client:  LookupTool(cfg.Rspamd.Client, nil, timeout),
		})
	}
	if !cfg.Antivirus.Disable {
		p.Stages = append(p.Stages, &Antivirus{
			Tool: LookupTool(cfg.Antivirus.Command, cfg.Antivirus.Args, timeout),
		})
	}
	if !cfg.DKIM.Disable {
		p.Stages = append(p.Stages, &DKIM{
			Tool: LookupTool(cfg.DKIM.Command, nil, timeout),
			Dir:  cfg.DKIM.Dir,
		})
	}
	p.Hooks = cfg.BuildHooks()
	return p
}

// InitHooks runs each hook's one-time setup.
func (p *Pipeline) InitHooks() {
	for _, h := range p.Hooks {
		h.AfterInit()
	}
}

// Run spools the message and walks the stages in order. The first
// non-accept verdict wins and later stages never run; headers accumulate
// only from accepting stages, in stage order. The spool is removed on
// every path.
func (p *Pipeline) Run(ctx context.Context, c *Context, r io.Reader) (out *Outcome) {
	started := time.Now()
	out = &Outcome{Verdict: Accept}

	defer func() {
		if rec := recover(); rec != nil {
			Log.Errorf("pipeline panic: %v", rec)
			out = &Outcome{Verdict: RejectTemporary, Reason: reasonTempFailure}
		}
		out.Elapse = Elapse(time.Since(started).Milliseconds())
	}()

	spool, err := NewSpool(r)
	if err != nil {
		Log.Errorf("%v", err)
		out.Verdict = RejectTemporary
		out.Reason = reasonTempFailure
		return out
	}
	defer func() {
		if err := spool.Remove(); err != nil {
			Log.Warnf("spool remove error: %v", err)
		}
	}()

	sum := &Summary{}
	if len(p.Hooks) > 0 {
		if b, err := spool.Bytes(); err == nil {
			sum = Summarize(b)
		}
	}

	for _, st := range p.Stages {
		stageStart := time.Now()
		res := runStage(ctx, st, c, spool)
		p.afterStage(st, res, stageStart)
		if res.Skipped {
			continue
		}
		if res.Verdict != Accept {
			Log.Debugf("[%s] %s: %s", st.Name(), res.Verdict, res.Reason)
			out.Verdict = res.Verdict
			out.Reason = res.Reason
			break
		}
		out.Headers = append(out.Headers, res.Headers...)
	}

	p.afterVerdict(c, sum, out, started)
	return out
}

func (p *Pipeline) afterStage(st Stage, res *StageResult, started time.Time) {
	if len(p.Hooks) == 0 {
		return
	}
	d := &AfterStageData{
		SessionID:  p.SessionID,
		OccurredAt: time.Now(),
		Stage:      st.Name(),
		Verdict:    res.Verdict.String(),
		Skipped:    res.Skipped,
		Reason:     res.Reason,
		Elapse:     Elapse(time.Since(started).Milliseconds()),
	}
	for _, h := range p.Hooks {
		h.AfterStage(d)
	}
}

func (p *Pipeline) afterVerdict(c *Context, sum *Summary, out *Outcome, started time.Time) {
	if len(p.Hooks) == 0 {
		return
	}
	d := &AfterVerdictData{
		SessionID:  p.SessionID,
		OccurredAt: time.Now(),
		Sender:     c.Sender,
		ClientIP:   c.PeerIP(),
		AuthUser:   c.AuthUser,
		Subject:    sum.Subject,
		MessageID:  sum.MessageID,
		Verdict:    out.Verdict.String(),
		Reason:     out.Reason,
		Elapse:     Elapse(time.Since(started).Milliseconds()),
	}
	for _, h := range p.Hooks {
		h.AfterVerdict(d)
	}
}

// Probe reports each stage tool and whether its binary resolved.
func (p *Pipeline) Probe() []string {
	var lines []string
	for _, st := range p.Stages {
		switch s := st.(type) {
		case *Greylist:
			lines = append(lines, probeLine(s.Name(), s.Tool))
		case *Spam:
			lines = append(lines, probeLine(s.Name(), s.Tool))
		case *Rspamd:
			lines = append(lines, probeLine("rspamd adapter", s.Adapter))
			lines = append(lines, probeLine("rspamd client", s.Client))
		case *Antivirus:
			lines = append(lines, probeLine(s.Name(), s.Tool))
		case *DKIM:
			lines = append(lines, probeLine(s.Name(), s.Tool))
		}
	}
	return lines
}

func probeLine(name string, t *Tool) string {
	if t.Available() {
		return fmt.Sprintf("%-16s ok (%s)", name, t.Path)
	}
	return fmt.Sprintf("%-16s missing (%s)", name, t.Name)
}
