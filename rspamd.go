package sift

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
)

// Rspamd consults the reputation daemon, preferring a site-local adapter
// that already speaks the pipeline's header protocol and falling back to
// the stock client.
type Rspamd struct {
	Adapter *Tool // wrapper printing ready-made header lines
	Client  *Tool // stock rspamc
}

func (r *Rspamd) Name() string {
	return "rspamd"
}

func (r *Rspamd) Applies(c *Context) bool {
	return r.Adapter.Available() || r.Client.Available()
}

func (r *Rspamd) Run(ctx context.Context, c *Context, spool *Spool) *StageResult {
	in, err := spool.Reader()
	if err != nil {
		Log.Warnf("[rspamd] %v", err)
		return resultTempFail(reasonTempFailure)
	}
	if r.Adapter.Available() {
		return r.runAdapter(ctx, in)
	}
	return r.runClient(ctx, in)
}

func (r *Rspamd) runAdapter(ctx context.Context, in io.Reader) *StageResult {
	res, err := r.Adapter.Run(ctx, in)
	if err != nil {
		Log.Warnf("[rspamd] %v", err)
		return resultTempFail(reasonTempFailure)
	}
	if res.ExitCode != 0 {
		return resultReject("spam detected")
	}
	return resultPass(splitHeaderLines(res.Stdout)...)
}

// runClient parses the stock client's report. The daemon being unreachable
// must never bounce mail for good, so every failure here defers.
func (r *Rspamd) runClient(ctx context.Context, in io.Reader) *StageResult {
	res, err := r.Client.Run(ctx, in)
	if err != nil {
		Log.Warnf("[rspamd] %v", err)
		return resultTempFail(reasonTempFailure)
	}
	if res.ExitCode != 0 {
		Log.Warnf("[rspamd] client exit %d: %s", res.ExitCode, strings.TrimSpace(string(res.Stderr)))
		return resultTempFail(reasonTempFailure)
	}
	action := scanAction(res.Stdout)
	if action == "reject" {
		return resultReject("spam detected")
	}
	if action != "" {
		return resultPass("X-Spam-Action: " + action)
	}
	return resultPass()
}

// scanAction extracts the first "Action:" value from an rspamc report.
func scanAction(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "action") {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

// splitHeaderLines turns tool stdout into individual header lines, dropping
// blanks and carriage returns.
func splitHeaderLines(out []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
