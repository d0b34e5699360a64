package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/siftmail/sift"
	"github.com/sirupsen/logrus"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
	builtBy = ""
	conf    = flag.String("config", "", "path to config file (default /etc/sift.conf)")
	storage = flag.String("storage", "", "specify extended storage from: mysql, sqlite, file")
	timeout = flag.String("timeout", "", "per-tool timeout, e.g. 45s")
	probe   = flag.Bool("probe", false, "print tool availability and exit")
	debug   = flag.Bool("debug", false, "verbose stage tracing")
	verFlag = flag.Bool("version", false, "show build version")
)

func init() {
	flag.Parse()
}

func main() {
	os.Exit(run())
}

// run keeps every failure inside the exit-code protocol: the MTA treats
// anything unexpected as a temporary condition, never as an acceptance.
func run() int {
	if *verFlag {
		fmt.Fprintf(os.Stderr, buildVersion(version, commit, date, builtBy)+"\n")
		return 0
	}

	cfg, err := sift.LoadConfig(*conf)
	if err != nil {
		sift.Log.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, "temporary local error, please try again later")
		return sift.ExitTempFail
	}
	if *storage != "" {
		cfg.Storage = *storage
	}
	if *timeout != "" {
		cfg.Timeout = *timeout
	}
	if lv, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		sift.Log.SetLevel(lv)
	}
	sift.SetDebug(*debug)

	p := sift.NewPipeline(cfg)

	if *probe {
		for _, line := range p.Probe() {
			fmt.Println(line)
		}
		return 0
	}

	c := sift.ContextFromEnviron()
	if cfg.ResolveSPF && !c.SPFPass && !sift.SPFProvided() {
		c.SPFPass = c.ResolveSPF()
	}

	p.InitHooks()

	out := p.Run(context.Background(), c, os.Stdin)
	if out.Verdict == sift.Accept {
		for _, h := range out.Headers {
			fmt.Println(h)
		}
		return sift.ExitAccept
	}

	reason := out.Reason
	if reason == "" {
		reason = "message rejected"
	}
	fmt.Fprintln(os.Stderr, reason)
	return out.Verdict.ExitCode()
}

func buildVersion(version, commit, date, builtBy string) string {
	var result = version
	if commit != "" {
		result = fmt.Sprintf("%s\ncommit: %s", result, commit)
	}
	if date != "" {
		result = fmt.Sprintf("%s\nbuilt at: %s", result, date)
	}
	if builtBy != "" {
		result = fmt.Sprintf("%s\nbuilt by: %s", result, builtBy)
	}
	return result
}
