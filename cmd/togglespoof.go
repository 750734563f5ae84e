package cmd

import (
	"context"
	"flag"

	"github.com/offspot/runtime-config/internal/armor"
	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/connectivity"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/settings"
	"github.com/offspot/runtime-config/internal/spoof"
	"github.com/offspot/runtime-config/internal/sysrun"
)

// RunToggleSpoof aligns the dnsmasq spoof directive with the current
// internet connectivity and restarts dnsmasq when the mode flipped.
func RunToggleSpoof(args []string) int {
	fs := flag.NewFlagSet("toggle-spoof", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug output")
	mode := fs.String("mode", "auto", "Spoof mode to apply: on, off or auto")
	fs.Parse(args)
	setDebug(*debug)

	log := logging.WithComponent("toggle-spoof")

	requested, ok := spoof.ParseMode(*mode)
	if !ok {
		log.Error("invalid spoof mode", "mode", *mode)
		return ExitInvalid
	}

	online := connectivity.IsOnline(context.Background())
	log.Info("connectivity probed", "online", online)

	// keep the status file current for anything watching it
	status := "offline"
	if online {
		status = "online"
	}
	statusPath := brand.Path(brand.InternetStatusPath)
	if err := armor.WriteFile(statusPath, status+"\n"); err != nil {
		log.Warn("cannot write connectivity status", "path", statusPath, "error", err)
	}

	decision := spoof.Resolve(requested, online)

	spoofPath := brand.Path(brand.DnsmasqSpoofConfPath)
	if spoof.CurrentlyEnabled(spoofPath) == (decision == spoof.Enabled) {
		log.Info("already in correct mode", "decision", decision.String())
		return ExitSuccess
	}

	address, ok := spoof.CurrentAddress(spoofPath)
	if !ok {
		address = settings.DefaultCapturedAddress
	}
	if err := spoof.Apply(spoofPath, address, decision); err != nil {
		return failError(log, "writing spoof conf failed", "error", err)
	}
	if err := sysrun.RestartOrStart(Runner, "dnsmasq"); err != nil {
		return failError(log, "restarting dnsmasq failed", "error", err)
	}
	return succeed(log, "toggled spoof mode")
}
