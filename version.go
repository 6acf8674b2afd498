package main

import (
	"os/exec"
	"runtime/debug"
	"strings"
	"time"
)

// Overridable with -ldflags "-X main.commit=... -X main.buildDate=...".
var (
	commit    = "dev"
	buildDate = ""
)

func init() {
	rev, when := vcsSettings()
	if commit == "dev" && rev != "" {
		commit = shortRev(rev)
	}
	if buildDate == "" && !when.IsZero() {
		buildDate = when.Format(time.DateOnly)
	}
	if commit == "dev" {
		if out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
			commit = strings.TrimSpace(string(out))
		}
	}
	if buildDate == "" {
		buildDate = time.Now().Format(time.DateOnly)
	}
}

// vcsSettings reads the revision and commit time stamped by the go tool.
func vcsSettings() (rev string, when time.Time) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", time.Time{}
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.time":
			when, _ = time.Parse(time.RFC3339, s.Value)
		}
	}
	return rev, when
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
