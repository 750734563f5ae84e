package cmd

import (
	"fmt"

	"github.com/offspot/runtime-config/internal/brand"
)

// RunVersion prints version information.
func RunVersion() int {
	fmt.Printf("%s %s (built %s)\n", brand.BinaryName, brand.Version, brand.BuildTime)
	return ExitSuccess
}
