package sift

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DKIM signs authenticated submissions when key material exists for the
// sender domain. It never rejects, and signer faults that would defer any
// other stage (spawn errors, non-zero exits, timeouts) skip instead: a
// missing signature costs reputation, not delivery.
type DKIM struct {
	Tool *Tool
	Dir  string // key material directory

	signer signer // resolved from the binary's usage text on first use
}

// signingKey is the per-domain key material found on disk.
type signingKey struct {
	Domain   string
	Selector string
	KeyFile  string
}

// signer runs one signing convention against the spool.
type signer interface {
	sign(ctx context.Context, tool *Tool, key signingKey, spool *Spool) *StageResult
}

func (d *DKIM) Name() string {
	return "dkim"
}

func (d *DKIM) Applies(c *Context) bool {
	if !c.Authenticated() || !d.Tool.Available() {
		return false
	}
	_, err := d.lookupKey(c.SenderDomain())
	return err == nil
}

func (d *DKIM) Run(ctx context.Context, c *Context, spool *Spool) *StageResult {
	key, err := d.lookupKey(c.SenderDomain())
	if err != nil {
		Log.Debugf("[dkim] no key material: %v", err)
		return resultSkip()
	}
	if d.signer == nil {
		d.signer = sniffSigner(ctx, d.Tool)
	}
	return d.signer.sign(ctx, d.Tool, key, spool)
}

// lookupKey loads <dir>/<domain>.selector (first line) and checks the
// matching key file exists.
func (d *DKIM) lookupKey(domain string) (signingKey, error) {
	if domain == "" {
		return signingKey{}, errors.New("no sender domain")
	}
	selFile := filepath.Join(d.Dir, domain+".selector")
	keyFile := filepath.Join(d.Dir, domain+".key")
	b, err := os.ReadFile(selFile)
	if err != nil {
		return signingKey{}, err
	}
	selector, _, _ := strings.Cut(string(b), "\n")
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return signingKey{}, fmt.Errorf("empty selector in %s", selFile)
	}
	if _, err := os.Stat(keyFile); err != nil {
		return signingKey{}, err
	}
	return signingKey{Domain: domain, Selector: selector, KeyFile: keyFile}, nil
}

// sniffSigner tells the two signer flavors apart by their usage text. The
// flag-style signer documents a -key option; the rewrite-style one does not.
func sniffSigner(ctx context.Context, tool *Tool) signer {
	if strings.Contains(tool.Help(ctx), "-key") {
		return headerSigner{}
	}
	return rewriteSigner{}
}

// rewriteSigner drives a signer that prints the whole signed message. The
// new headers are recovered by diffing against the original and the spool
// is replaced so later consumers see the signed body.
type rewriteSigner struct{}

func (rewriteSigner) sign(ctx context.Context, tool *Tool, key signingKey, spool *Spool) *StageResult {
	original, err := spool.Bytes()
	if err != nil {
		Log.Warnf("[dkim] %v", err)
		return resultSkip()
	}
	res, err := tool.Run(ctx, bytes.NewReader(original), "-d", key.Domain, "-k", key.KeyFile, "-s", key.Selector)
	if err != nil {
		Log.Warnf("[dkim] %v", err)
		return resultSkip()
	}
	if res.ExitCode != 0 {
		Log.Warnf("[dkim] signer exit %d: %s", res.ExitCode, strings.TrimSpace(string(res.Stderr)))
		return resultSkip()
	}
	added := addedLines(original, res.Stdout)
	if len(added) == 0 {
		Log.Warnf("[dkim] signer returned the message unchanged")
		return resultSkip()
	}
	if err := spool.Replace(res.Stdout); err != nil {
		Log.Warnf("[dkim] %v", err)
		return resultSkip()
	}
	return resultPass(added...)
}

// headerSigner drives a signer that prints just the signature header lines.
type headerSigner struct{}

func (headerSigner) sign(ctx context.Context, tool *Tool, key signingKey, spool *Spool) *StageResult {
	in, err := spool.Reader()
	if err != nil {
		Log.Warnf("[dkim] %v", err)
		return resultSkip()
	}
	res, err := tool.Run(ctx, in, "-n", "-h", "-key", key.KeyFile, "-s", key.Selector, "-d", key.Domain)
	if err != nil {
		Log.Warnf("[dkim] %v", err)
		return resultSkip()
	}
	if res.ExitCode != 0 {
		Log.Warnf("[dkim] signer exit %d: %s", res.ExitCode, strings.TrimSpace(string(res.Stderr)))
		return resultSkip()
	}
	headers := splitHeaderLines(res.Stdout)
	if len(headers) == 0 {
		Log.Warnf("[dkim] signer produced no headers")
		return resultSkip()
	}
	return resultPass(headers...)
}

// addedLines returns the lines present in signed but not in the original,
// the same set a plain diff marks with ">".
func addedLines(original, signed []byte) []string {
	a := difflib.SplitLines(string(original))
	b := difflib.SplitLines(string(signed))
	var added []string
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		if op.Tag != 'i' && op.Tag != 'r' {
			continue
		}
		for _, line := range b[op.J1:op.J2] {
			if line = strings.TrimRight(line, "\r\n"); line != "" {
				added = append(added, line)
			}
		}
	}
	return added
}
