package cmd

import (
	"flag"

	yaml "gopkg.in/yaml.v2"

	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/firewall"
	"github.com/offspot/runtime-config/internal/firmware"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/settings"
	"github.com/offspot/runtime-config/internal/sysrun"
)

// RunApply applies the boot-time settings document: each requested key
// goes through its subsystem and is removed from the document once
// applied, so the file converges towards empty on healthy boots.
func RunApply(args []string) int {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug output")
	fs.Parse(args)
	setDebug(*debug)

	configPath := brand.Path(brand.GetSettingsPath())
	if fs.NArg() > 0 {
		configPath = fs.Arg(0)
	}

	log := logging.WithComponent("apply")
	log.Info("starting runtime-config", "config", configPath)

	doc, err := settings.Load(configPath)
	if err != nil {
		log.Error("unable to read settings document", "path", configPath, "error", err)
		// the AP stack must come up even when the document is broken
		startAPStack(log)
		return ExitError
	}

	hasError := false
	rebootRequested := false

	for _, key := range settings.KnownKeys {
		if !doc.Has(key) {
			if key == "ap" {
				if err := startAPStack(log); err != nil {
					hasError = true
				}
			}
			continue
		}

		log.Debug("config change requested", "key", key)
		code := applyKey(log, doc, key)
		switch code {
		case ExitSuccess, ExitReboot:
			log.Info("configuration applied", "key", key)
			doc.Pop(key)
			if err := doc.Save(); err != nil {
				log.Error("cannot rewrite settings document", "error", err)
				hasError = true
			}
			if code == ExitReboot {
				rebootRequested = true
			}
		case ExitInvalid:
			log.Error("incorrect configuration, please fix", "key", key)
			hasError = true
		default:
			log.Error("error applying configuration", "key", key)
			hasError = true
		}
	}

	if hasError {
		return ExitError
	}
	if rebootRequested {
		log.Info("runtime-config applied, reboot required")
		return ExitReboot
	}
	return succeed(log, "runtime-config applied successfully")
}

// applyKey dispatches one settings key to its subsystem.
func applyKey(log *logging.Logger, doc *settings.Document, key string) int {
	switch key {
	case "firmware":
		var sel firmware.Selection
		if err := doc.Decode(key, &sel); err != nil {
			log.Error("malformed firmware section", "error", err)
			return ExitInvalid
		}
		return applyFirmware(logging.WithComponent("firmware"), sel)

	case "timezone":
		zone, err := doc.String(key)
		if err != nil {
			log.Error("malformed timezone section", "error", err)
			return ExitInvalid
		}
		return applyTimezone(logging.WithComponent("timezone"), zone)

	case "hostname":
		name, err := doc.String(key)
		if err != nil {
			log.Error("malformed hostname section", "error", err)
			return ExitInvalid
		}
		return applyHostname(logging.WithComponent("hostname"), name)

	case "ethernet":
		var eth settings.Ethernet
		if err := doc.Decode(key, &eth); err != nil {
			log.Error("malformed ethernet section", "error", err)
			return ExitInvalid
		}
		return applyEthernet(logging.WithComponent("ethernet"), eth)

	case "ap":
		var ap settings.AP
		if err := doc.Decode(key, &ap); err != nil {
			log.Error("malformed ap section", "error", err)
			return ExitInvalid
		}
		if ap.SSID == "" {
			log.Error("ap section misses an ssid")
			return ExitInvalid
		}
		return applyAP(logging.WithComponent("ap"), ap)

	case "containers":
		raw, ok := doc.Raw(key)
		if !ok {
			return ExitInvalid
		}
		payload, err := yaml.Marshal(raw)
		if err != nil {
			log.Error("cannot re-encode containers section", "error", err)
			return ExitInvalid
		}
		return applyContainersPayload(logging.WithComponent("containers"), payload)
	}
	return ExitInvalid
}

// startAPStack brings the AP services up with whatever configuration is
// already on disk.
func startAPStack(log *logging.Logger) error {
	var firstErr error
	for _, unit := range []string{"hostapd", "dnsmasq"} {
		if err := sysrun.RestartOrStart(Runner, unit); err != nil {
			log.Error("cannot start unit", "unit", unit, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if err := firewall.RestoreAll(Runner, firewall.RulesFiles); err != nil {
		log.Error("cannot restore firewall rules", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
