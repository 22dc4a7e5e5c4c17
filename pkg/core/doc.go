// Package core provides a small, stable facade over keygate's internal
// engine for external integrations. It deliberately re-exports a narrow API
// surface so other tools can depend on a stable import path without reaching
// into internal packages.
//
// Example:
//
//	cfg := core.Config{BaseURL: "https://proj.example.com", SharedKey: key}
//	res, err := core.Audit(context.Background(), cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalReport(os.Stdout, res.Report)
package core
