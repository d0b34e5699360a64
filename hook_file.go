package sift

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

const (
	fileStageJson string = `{"type":"stage","occurred_at":"%s","session_id":"%s","stage":"%s","verdict":"%s","skipped":"%t","reason":"%s"}
`
	fileVerdictJson string = `{"type":"verdict","occurred_at":"%s","session_id":"%s","from":"%s","client":"%s","auth_user":"%s","subject":"%s","message_id":"%s","verdict":"%s","reason":"%s","elapse":"%s"}
`
)

type HookFile struct {
	file io.Writer
}

func (h *HookFile) Name() string {
	return "file"
}

func (h *HookFile) writer() (io.Writer, error) {
	if h.file != nil {
		return h.file, nil
	}

	path := os.Getenv("FILE_PATH")
	if len(path) == 0 {
		return nil, fmt.Errorf("missing path for file, please set `FILE_PATH`")
	}

	var err error
	h.file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile error: %s", err)
	}

	return h.file, nil
}

func (h *HookFile) AfterInit() {
}

func (h *HookFile) AfterStage(d *AfterStageData) {
	writer, err := h.writer()
	if err != nil {
		Log.Warnf("[%s] %s", h.Name(), err)
		return
	}

	if _, err := fmt.Fprintf(writer, fileStageJson, d.OccurredAt.Format(time.RFC3339),
		d.SessionID, d.Stage, d.Verdict, d.Skipped, jsonField(d.Reason)); err != nil {
		Log.Warnf("[%s] file append error: %s", h.Name(), err)
	}
}

func (h *HookFile) AfterVerdict(d *AfterVerdictData) {
	writer, err := h.writer()
	if err != nil {
		Log.Warnf("[%s] %s", h.Name(), err)
		return
	}

	if _, err := fmt.Fprintf(writer, fileVerdictJson, d.OccurredAt.Format(time.RFC3339),
		d.SessionID, jsonField(d.Sender), d.ClientIP, jsonField(d.AuthUser),
		jsonField(d.Subject), jsonField(d.MessageID), d.Verdict, jsonField(d.Reason),
		d.Elapse); err != nil {
		Log.Warnf("[%s] file append error: %s", h.Name(), err)
	}
}

// jsonField escapes free-form text for embedding in a quoted JSON string.
func jsonField(s string) string {
	q := strconv.Quote(s)
	return q[1 : len(q)-1]
}
