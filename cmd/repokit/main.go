package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
)

const helpDescription = `
Read and write notes through a pluggable data-access strategy.

Highlights:
  - Four strategies: remote-only, local-only, remote-with-local-cache and
    local-with-remote-fallback.
  - Local cache in a JSON file, in memory or in Redis.
  - Every failure is classified into a typed kind with a readable message.
  - "repokit sync" keeps the cache warm and exposes Prometheus metrics.
`

var exampleUsage = strings.TrimSpace(`
  repokit list --service-url https://notes.example.com/v1 --auth-key <api-key>
  repokit create --title "groceries" --body "milk, eggs" --tag home
  repokit search milk --strategy local-only
  repokit sync --cache redis --redis-url redis://localhost:6379/0 --metrics-addr :9102
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func versionString() string {
	return fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH)
}

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "repokit:", err)
		os.Exit(1)
	}
}
