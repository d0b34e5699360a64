package sift

// Verdict represents the pipeline's final decision for a message.
type Verdict int

const (
	Accept          Verdict = iota // Deliver the message
	RejectTemporary                // Defer, the sender should retry later
	RejectPermanent                // Bounce, the sender should not retry
)

// Exit codes understood by the calling mail system. Anything non-zero other
// than ExitReject is taken as a temporary failure.
const (
	ExitAccept   int = 0
	ExitReject   int = 20
	ExitTempFail int = 75 // EX_TEMPFAIL from sysexits
)

// reasonTempFailure is the bounce text for infrastructure faults.
const reasonTempFailure = "temporary local error, please try again later"

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case RejectTemporary:
		return "reject-temporary"
	case RejectPermanent:
		return "reject-permanent"
	}
	return "unknown"
}

// ExitCode collapses the verdict to the exit code reported to the caller.
func (v Verdict) ExitCode() int {
	switch v {
	case RejectTemporary:
		return ExitTempFail
	case RejectPermanent:
		return ExitReject
	}
	return ExitAccept
}

// StageResult represents the result of a single stage run.
type StageResult struct {
	Verdict Verdict
	Headers []string // Header lines to add, e.g. "X-Greylist: pass"
	Reason  string   // Bounce text for rejecting verdicts
	Skipped bool     // Capability absent or preconditions unmet
}

func resultPass(headers ...string) *StageResult {
	return &StageResult{Verdict: Accept, Headers: headers}
}

func resultSkip() *StageResult {
	return &StageResult{Verdict: Accept, Skipped: true}
}

func resultTempFail(reason string) *StageResult {
	return &StageResult{Verdict: RejectTemporary, Reason: reason}
}

func resultReject(reason string) *StageResult {
	return &StageResult{Verdict: RejectPermanent, Reason: reason}
}
