// Package version holds build information, overridden at link time:
//
//	go build -ldflags "-X github.com/ChristianF88/burstx/version.Version=1.2.0 -X github.com/ChristianF88/burstx/version.Date=2026-01-31"
package version

var (
	Version = "dev"
	Date    = ""
)
