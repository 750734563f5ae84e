// Package timezone sets the machine's timezone through systemd.
package timezone

import (
	"fmt"

	"github.com/offspot/runtime-config/internal/checks"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/refdata"
	"github.com/offspot/runtime-config/internal/sysrun"
)

// Validate checks the zone against the system's tz database.
func Validate(zone string, zones refdata.ZoneIndex) checks.CheckResult {
	return checks.IsValidTimezone(zone, zones)
}

// Apply sets the timezone. The zone must already have passed Validate.
func Apply(run sysrun.Runner, zone string) error {
	if _, err := run.RunCommand("timedatectl", "--no-ask-password", "set-timezone", zone); err != nil {
		return fmt.Errorf("setting timezone: %w", err)
	}
	logging.WithComponent("timezone").Info("timezone applied", "timezone", zone)
	return nil
}
