// Package sysrun abstracts the external commands the configurators
// shell out to (systemctl, dnsmasq, iptables-restore, rfkill) behind a
// small Runner interface so every caller is testable without root.
package sysrun

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/offspot/runtime-config/internal/logging"
)

// Runner executes a command and returns its combined output.
type Runner interface {
	RunCommand(name string, arg ...string) (string, error)
}

// ExecRunner is the real Runner backed by os/exec.
type ExecRunner struct{}

// RunCommand runs a command and returns its combined output.
func (r *ExecRunner) RunCommand(name string, arg ...string) (string, error) {
	logging.WithComponent("sysrun").Debug("running command", "name", name, "args", strings.Join(arg, " "))
	cmd := exec.Command(name, arg...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("command %s %v failed: %w, output: %s", name, arg, err, string(output))
	}
	return string(output), nil
}

// RecordingRunner records commands instead of executing them. Outputs
// and errors can be scripted per command name for tests.
type RecordingRunner struct {
	mu       sync.Mutex
	Commands []string
	Outputs  map[string]string
	Errors   map[string]error
}

// NewRecordingRunner creates an empty recording runner.
func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{
		Commands: make([]string, 0),
		Outputs:  make(map[string]string),
		Errors:   make(map[string]error),
	}
}

// RunCommand records the command line and returns the scripted result.
func (r *RecordingRunner) RunCommand(name string, arg ...string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := name
	if len(arg) > 0 {
		line = fmt.Sprintf("%s %s", name, strings.Join(arg, " "))
	}
	r.Commands = append(r.Commands, line)
	return r.Outputs[name], r.Errors[name]
}

// Ran reports whether any recorded command line contains the fragment.
func (r *RecordingRunner) Ran(fragment string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Commands {
		if strings.Contains(c, fragment) {
			return true
		}
	}
	return false
}

// RestartOrStart restarts a systemd unit, falling back to a plain start
// when the unit was not running.
func RestartOrStart(run Runner, unit string) error {
	if _, err := run.RunCommand("systemctl", "restart", unit); err == nil {
		return nil
	}
	_, err := run.RunCommand("systemctl", "start", unit)
	if err != nil {
		return fmt.Errorf("starting %s: %w", unit, err)
	}
	return nil
}

// EnableNow enables a unit and starts it in the same invocation.
func EnableNow(run Runner, unit string) error {
	_, err := run.RunCommand("systemctl", "enable", "--now", unit)
	return err
}

// DaemonReload asks systemd to re-read unit files.
func DaemonReload(run Runner) error {
	_, err := run.RunCommand("systemctl", "daemon-reload")
	return err
}

// CheckDnsmasqConf runs dnsmasq's built-in syntax check against a
// candidate configuration file before it is put into service.
func CheckDnsmasqConf(run Runner, path string) error {
	_, err := run.RunCommand("dnsmasq", "--test", "--conf-file="+path)
	if err != nil {
		return fmt.Errorf("dnsmasq rejected %s: %w", path, err)
	}
	return nil
}

// RestoreIptables loads a rules file via iptables-restore.
func RestoreIptables(run Runner, rulesPath string) error {
	_, err := run.RunCommand("iptables-restore", rulesPath)
	if err != nil {
		return fmt.Errorf("iptables-restore %s: %w", rulesPath, err)
	}
	return nil
}

// UnblockWifi lifts any rfkill soft block on the wireless radios.
// Missing rfkill is tolerated: some images ship without it.
func UnblockWifi(run Runner) {
	if _, err := run.RunCommand("rfkill", "unblock", "wifi"); err != nil {
		logging.WithComponent("sysrun").Debug("rfkill unblock failed", "error", err)
	}
}

// SetHostname applies a hostname through hostnamectl.
func SetHostname(run Runner, name string) error {
	_, err := run.RunCommand("hostnamectl", "set-hostname", name)
	return err
}

// SetTimezone applies a timezone through timedatectl.
func SetTimezone(run Runner, zone string) error {
	_, err := run.RunCommand("timedatectl", "set-timezone", zone)
	return err
}
