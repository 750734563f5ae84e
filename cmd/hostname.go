package cmd

import (
	"flag"

	"github.com/offspot/runtime-config/internal/hostname"
	"github.com/offspot/runtime-config/internal/logging"
)

// RunHostname sets the machine's hostname.
func RunHostname(args []string) int {
	fs := flag.NewFlagSet("hostname", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug output")
	fs.Parse(args)
	setDebug(*debug)

	log := logging.WithComponent("hostname")
	if fs.NArg() != 1 {
		log.Error("exactly one hostname argument required")
		return ExitInvalid
	}
	return applyHostname(log, fs.Arg(0))
}

func applyHostname(log *logging.Logger, name string) int {
	log.Info("configuring hostname", "hostname", name)

	if check := hostname.Validate(name); !check.OK() {
		return failInvalid(log, check)
	}
	if err := hostname.Apply(Runner, name); err != nil {
		return failError(log, "configuring hostname failed", "error", err)
	}
	return succeed(log, "hostname configured")
}
