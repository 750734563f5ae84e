// Package cmd implements the subcommand entrypoints. Every Run*
// function returns a process exit code: external automation depends on
// the mapping, so it is part of the tool's contract.
package cmd

import (
	"github.com/offspot/runtime-config/internal/checks"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/sysrun"
)

// Exit codes honored by every subcommand.
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitInvalid = 2
	ExitReboot  = 100
)

// Runner executes system commands. Tests swap in a recording fake.
var Runner sysrun.Runner = &sysrun.ExecRunner{}

func succeed(log *logging.Logger, msg string) int {
	log.Info(msg)
	return ExitSuccess
}

func failError(log *logging.Logger, msg string, args ...any) int {
	log.Error(msg, args...)
	return ExitError
}

func failInvalid(log *logging.Logger, check checks.CheckResult) int {
	log.Error("invalid configuration", "reason", check.HelpText)
	return ExitInvalid
}

func setDebug(enabled bool) {
	if enabled {
		logging.Default().SetLevel(logging.LevelDebug)
	}
}
