package main

import (
	"fmt"
	"os"

	"github.com/offspot/runtime-config/cmd"
	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/logging"
)

func main() {
	logging.SetPrefix(brand.BinaryName)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(cmd.ExitInvalid)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "apply":
		os.Exit(cmd.RunApply(args))
	case "ap":
		os.Exit(cmd.RunAP(args))
	case "ethernet":
		os.Exit(cmd.RunEthernet(args))
	case "hostname":
		os.Exit(cmd.RunHostname(args))
	case "timezone":
		os.Exit(cmd.RunTimezone(args))
	case "containers":
		os.Exit(cmd.RunContainers(args))
	case "firmware":
		os.Exit(cmd.RunFirmware(args))
	case "toggle-spoof":
		os.Exit(cmd.RunToggleSpoof(args))
	case "version", "-V", "--version":
		os.Exit(cmd.RunVersion())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(cmd.ExitInvalid)
	}
}

func printUsage() {
	fmt.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  apply [path]      Apply the boot-time settings document (default %s)
  ap <ssid>         Configure the WiFi access point
  ethernet          Configure the wired network
  hostname <name>   Set the machine hostname
  timezone <zone>   Set the machine timezone
  containers <src>  Validate and install a docker-compose document
  firmware          Select the WiFi chipset firmware
  toggle-spoof      Align DNS spoof mode with internet connectivity
  version           Print version information

Run '%s <command> -h' for command options.

Exit codes: 0 success, 1 failure, 2 invalid input, 100 reboot required.
`, brand.BinaryName, brand.Description, brand.BinaryName, brand.SettingsPath, brand.BinaryName)
}
