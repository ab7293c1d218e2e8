// Package version centralizes the tool's version string so the CLI and MCP
// server report the same value.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/classkit/classkit/internal/version.Version=v1.2.3"
var Version = "0.2.0-dev"
