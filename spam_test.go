package sift

import (
	"context"
	"strings"
	"testing"
	"time"
)

func spoolFor(t *testing.T, msg string) *Spool {
	t.Helper()
	sp, err := NewSpool(strings.NewReader(msg))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sp.Remove() })
	return sp
}

func TestSpamApplies(t *testing.T) {
	s := &Spam{Tool: scriptTool(t, "exit 0", time.Second)}
	if !s.Applies(&Context{}) {
		t.Error("expected applies with tool present")
	}
	s = &Spam{Tool: LookupTool("no-such-tool-anywhere", nil, time.Second)}
	if s.Applies(&Context{}) {
		t.Error("expected skip without tool")
	}
}

func TestSpamRunScore(t *testing.T) {
	s := &Spam{Tool: scriptTool(t, `cat - >/dev/null; echo "1.5/5.0"`, time.Second)}
	sp := spoolFor(t, "Subject: hi\r\n\r\nham\r\n")

	res := s.Run(context.Background(), &Context{}, sp)
	if res.Verdict != Accept {
		t.Fatalf("expected accept, got %+v", res)
	}
	if len(res.Headers) != 1 || res.Headers[0] != "X-Spam-Score: 1.5/5.0" {
		t.Errorf("expected score header, got %v", res.Headers)
	}
}

func TestSpamRunSilentScorer(t *testing.T) {
	s := &Spam{Tool: scriptTool(t, `cat - >/dev/null; exit 0`, time.Second)}
	sp := spoolFor(t, "msg")

	res := s.Run(context.Background(), &Context{}, sp)
	if res.Verdict != Accept {
		t.Fatalf("expected accept, got %+v", res)
	}
	if len(res.Headers) != 0 {
		t.Errorf("expected no header for a silent scorer, got %v", res.Headers)
	}
}

func TestSpamRunReject(t *testing.T) {
	s := &Spam{Tool: scriptTool(t, `cat - >/dev/null; echo "9.9/5.0"; exit 1`, time.Second)}
	sp := spoolFor(t, "viagra")

	res := s.Run(context.Background(), &Context{}, sp)
	if res.Verdict != RejectPermanent {
		t.Fatalf("expected permanent rejection, got %+v", res)
	}
	if res.Reason != "spam detected" {
		t.Errorf("expected spam detected, got %q", res.Reason)
	}
	if len(res.Headers) != 0 {
		t.Errorf("rejecting stage must not add headers, got %v", res.Headers)
	}
}

func TestSpamRunFault(t *testing.T) {
	s := &Spam{Tool: scriptTool(t, "sleep 5", 50*time.Millisecond)}
	sp := spoolFor(t, "msg")

	res := s.Run(context.Background(), &Context{}, sp)
	if res.Verdict != RejectTemporary {
		t.Fatalf("expected temporary rejection on fault, got %+v", res)
	}
}
