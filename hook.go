package sift

import (
	"fmt"
	"time"
)

// TimeFormat is the timestamp layout stored by the database hooks.
const TimeFormat = "2006-01-02 15:04:05"

// Elapse is a duration in milliseconds kept in audit records.
type Elapse int64

func (e Elapse) String() string {
	return fmt.Sprintf("%d msec", int64(e))
}

// Hook receives audit events from the pipeline. Implementations must never
// influence the verdict; their failures are logged and swallowed.
type Hook interface {
	Name() string
	AfterInit()
	AfterStage(*AfterStageData)
	AfterVerdict(*AfterVerdictData)
}

// AfterStageData describes one executed stage.
type AfterStageData struct {
	SessionID  string
	OccurredAt time.Time
	Stage      string
	Verdict    string
	Skipped    bool
	Reason     string
	Elapse
}

// AfterVerdictData describes the final outcome for one message.
type AfterVerdictData struct {
	SessionID  string
	OccurredAt time.Time
	Sender     string
	ClientIP   string
	AuthUser   string
	Subject    string
	MessageID  string
	Verdict    string
	Reason     string
	Elapse
}
