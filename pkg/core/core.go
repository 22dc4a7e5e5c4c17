package core

import (
	"context"

	"github.com/keygate/keygate/internal/engine"
	"github.com/keygate/keygate/internal/report"
	"github.com/keygate/keygate/internal/types"
)

// Re-export selected internal types as a stable public API surface. These
// are type aliases so they can later be replaced with decoupled structs
// without breaking callers.
type Config = engine.Config
type Result = engine.Result
type Finding = types.Finding
type Report = types.Report
type Summary = types.Summary

// Audit is the stable entrypoint for other programs: one full run, report
// included.
func Audit(ctx context.Context, cfg Config) (Result, error) {
	return engine.Run(ctx, cfg)
}

// ShouldFail exposes the strict gate so integrations can mirror the CLI's
// exit behavior.
func ShouldFail(s Summary, strict bool) bool {
	return report.ShouldFail(s, strict)
}
