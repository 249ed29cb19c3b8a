package main

import (
	"github.com/ssup/ssup/internal/cli"
)

// Set at build time:
//
//	go build -ldflags "-X main.version=0.5.0 -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%F)" ./cmd/ssup
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
