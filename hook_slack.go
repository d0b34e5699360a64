package sift

import (
	"context"
	"fmt"
	"os"

	"github.com/lestrrat-go/slack"
)

// HookSlack notifies a channel when mail is rejected. Accepted mail stays
// quiet.
type HookSlack struct{}

func (h *HookSlack) Name() string {
	return "slack"
}

func (h *HookSlack) notify(msg string) error {
	username := "Sift"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := os.Getenv("SLACK_TOKEN")
	if len(token) == 0 {
		return fmt.Errorf("missing SLACK_TOKEN, please set `SLACK_TOKEN`")
	}

	channel := os.Getenv("SLACK_CHANNEL")
	if len(channel) == 0 {
		return fmt.Errorf("missing SLACK_CHANNEL, please set `SLACK_CHANNEL`")
	}

	cl := slack.New(token)
	_, err := cl.Chat().PostMessage(channel).Username(username).Text(msg).Do(ctx)
	return err
}

func (h *HookSlack) AfterInit() {
}

func (h *HookSlack) AfterStage(d *AfterStageData) {
}

func (h *HookSlack) AfterVerdict(d *AfterVerdictData) {
	if d.Verdict == Accept.String() {
		return
	}
	err := h.notify(fmt.Sprintf("%s from `%s` (%s): %s", d.Verdict, d.Sender, d.ClientIP, d.Reason))
	if err != nil {
		Log.Warnf("[%s] %s", h.Name(), err)
	}
}
