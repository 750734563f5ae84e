package cmd

import (
	"flag"

	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/refdata"
	"github.com/offspot/runtime-config/internal/timezone"
)

// RunTimezone sets the machine's timezone.
func RunTimezone(args []string) int {
	fs := flag.NewFlagSet("timezone", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug output")
	fs.Parse(args)
	setDebug(*debug)

	log := logging.WithComponent("timezone")
	if fs.NArg() != 1 {
		log.Error("exactly one timezone argument required")
		return ExitInvalid
	}
	return applyTimezone(log, fs.Arg(0))
}

func applyTimezone(log *logging.Logger, zone string) int {
	log.Info("configuring timezone", "timezone", zone)

	if check := timezone.Validate(zone, refdata.Zones()); !check.OK() {
		return failInvalid(log, check)
	}
	if err := timezone.Apply(Runner, zone); err != nil {
		return failError(log, "configuring timezone failed", "error", err)
	}
	return succeed(log, "timezone applied")
}
