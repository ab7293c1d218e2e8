// Package debug provides gated diagnostic logging. Output is disabled by
// default and never goes to stdout while the MCP stdio transport is active,
// because stdout is the protocol channel.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// MCPMode tracks whether the process is serving MCP over stdio.
var mcpMode = false

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
)

// SetMCPMode suppresses all diagnostic output on stdio transports.
func SetMCPMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	mcpMode = enabled
}

// SetOutput redirects diagnostic output. Pass nil to disable entirely.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether diagnostic logging is active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	if mcpMode {
		return false
	}
	v := os.Getenv("CLASSKIT_DEBUG")
	return v == "1" || v == "true"
}

// Printf logs a diagnostic line when debug logging is enabled.
func Printf(format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	mu.Lock()
	w := output
	mu.Unlock()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[classkit] "+format, args...)
}
