// Package logging provides a minimal logging interface and adapters for agentloop.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn,
// Error) that agents, tools, stores and the runner use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ContextLogger adding agent / conversation attributes and domain helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	a := agent.NewToolCallAgent(m, registry, mem, func(o *agent.Options) { o.Logger = logger })
//
// Messages follow a dotted event naming scheme (agent.step.start,
// tool.call.error, ...) with slog-style key/value arguments.
package logging
