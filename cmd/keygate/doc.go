// Package keygate provides the command-line interface for the keygate tool.
// It configures subcommands (audit, show, baseline, etc.), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/keygate/keygate/cmd/keygate"
//	func main() { keygate.Execute() }
package keygate
