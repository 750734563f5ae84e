package cmd

import (
	"flag"

	"github.com/offspot/runtime-config/internal/firmware"
	"github.com/offspot/runtime-config/internal/logging"
)

// RunFirmware selects the Wi-Fi chipset firmware. Exits with the
// reboot code when the selection changed on disk.
func RunFirmware(args []string) int {
	fs := flag.NewFlagSet("firmware", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug output")
	brcm43455 := fs.String("brcm43455", "", "Firmware to use for the brcm43455 chipset")
	brcm43430 := fs.String("brcm43430", "", "Firmware to use for the brcm43430 chipset")
	fs.Parse(args)
	setDebug(*debug)

	log := logging.WithComponent("firmware")
	sel := firmware.Selection{BRCM43455: *brcm43455, BRCM43430: *brcm43430}
	return applyFirmware(log, sel)
}

func applyFirmware(log *logging.Logger, sel firmware.Selection) int {
	log.Info("configuring WiFi firmware")

	if check := firmware.Validate(sel); !check.OK() {
		return failInvalid(log, check)
	}
	changed, err := firmware.Apply(sel)
	if err != nil {
		return failError(log, "applying firmware selection failed", "error", err)
	}
	if changed {
		log.Info("WiFi firmware updated, reboot required")
		return ExitReboot
	}
	return succeed(log, "no firmware changed")
}
